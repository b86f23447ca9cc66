package api

// Service accessors group Client operations by resource.
// Each service embeds *Client.

type AuthService struct{ *Client }

type UsersService struct{ *Client }

func (c *Client) Auth() AuthService {
	return AuthService{c}
}

func (c *Client) Users() UsersService {
	return UsersService{c}
}
