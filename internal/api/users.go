package api

import "context"

// List returns one page of admin users.
func (s UsersService) List(ctx context.Context, offset, limit int) ([]User, error) {
	env, err := Do[UserList](ctx, s.Client, ListUsers(offset, limit), nil)
	if err != nil {
		return nil, err
	}
	if err := env.Err(); err != nil {
		return nil, err
	}
	return env.Data, nil
}

// Get returns a single admin user by ID.
func (s UsersService) Get(ctx context.Context, id string) (*User, error) {
	env, err := Do[User](ctx, s.Client, UserDetail(id), nil)
	if err != nil {
		return nil, err
	}
	if err := env.Err(); err != nil {
		return nil, err
	}
	return &env.Data, nil
}

// Update replaces the editable fields of a user. Empty form values are not sent.
func (s UsersService) Update(ctx context.Context, id string, form AdminForm) (*User, error) {
	env, err := DoMultipart[User](ctx, s.Client, UpdateUser(id), form.Fields(), form.File())
	if err != nil {
		return nil, err
	}
	if err := env.Err(); err != nil {
		return nil, err
	}
	return &env.Data, nil
}
