package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/bullion/bullion-cli/internal/api"
	"github.com/bullion/bullion-cli/internal/cache"
	"github.com/bullion/bullion-cli/internal/dryrun"
	"github.com/bullion/bullion-cli/internal/iocontext"
	"github.com/bullion/bullion-cli/internal/outfmt"
	"github.com/bullion/bullion-cli/internal/resolve"
)

const (
	defaultListOffset = 5
	defaultListLimit  = 5

	// resolvePageSize is how many users name resolution lists.
	resolvePageSize = 100

	usersCacheKey = "users"
)

// userView is the JSON shape of a user. The photo is reported by size only.
type userView struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Gender      string `json:"gender,omitempty"`
	DateOfBirth string `json:"date_of_birth,omitempty"`
	Phone       string `json:"phone,omitempty"`
	Address     string `json:"address,omitempty"`
	HasPhoto    bool   `json:"has_photo"`
}

func userJSON(u api.User) userView {
	return userView{
		ID:          u.ID,
		Name:        u.DisplayName(),
		Email:       u.Email,
		Gender:      deref(u.Gender),
		DateOfBirth: deref(u.DateOfBirth),
		Phone:       deref(u.Phone),
		Address:     deref(u.Address),
		HasPhoto:    deref(u.Photo) != "",
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

func newUsersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "users",
		Aliases: []string{"user", "u"},
		Short:   "List, show and edit admin users",
	}

	cmd.AddCommand(newUsersListCmd())
	cmd.AddCommand(newUsersGetCmd())
	cmd.AddCommand(newUsersUpdateCmd())

	return cmd
}

func newUsersListCmd() *cobra.Command {
	var offset, limit int

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List admin users",
		Example: strings.TrimSpace(`
  bullion users list
  bullion users list --offset 0 --limit 50
  bullion users list --json --query '.items[].email'
`),
		Args: cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			if offset < 0 {
				return fmt.Errorf("--offset must be >= 0")
			}
			if limit < 0 {
				return fmt.Errorf("--limit must be >= 0")
			}

			client, err := getAuthedClient(cmd.Context())
			if err != nil {
				return err
			}
			users, err := client.Users().List(cmd.Context(), offset, limit)
			if err != nil {
				return err
			}
			rememberUsers(client.BaseURL, users)

			if isJSON(cmd) {
				views := make([]userView, len(users))
				for i, u := range users {
					views[i] = userJSON(u)
				}
				return printJSON(cmd, views)
			}

			ioStreams := iocontext.GetIO(cmd.Context())
			f := outfmt.NewFormatter(cmd.Context(), ioStreams.Out, ioStreams.ErrOut)
			if len(users) == 0 {
				f.Empty("No users found")
				return nil
			}
			f.StartTable("ID", "NAME", "EMAIL", "GENDER", "DOB", "PHONE")
			for _, u := range users {
				f.Row(u.ID, u.DisplayName(), u.Email, u.GenderLabel(), u.FormattedDOB(), orNA(deref(u.Phone)))
			}
			return f.EndTable()
		}),
	}

	cmd.Flags().IntVar(&offset, "offset", defaultListOffset, "Number of users to skip")
	cmd.Flags().IntVar(&limit, "limit", defaultListLimit, "Maximum number of users to return")
	flagAlias(cmd.Flags(), "offset", "skip")
	flagAlias(cmd.Flags(), "limit", "lim")

	return cmd
}

func newUsersGetCmd() *cobra.Command {
	var (
		savePhoto   string
		concurrency int64
		progress    bool
	)

	cmd := &cobra.Command{
		Use:     "get ID|NAME...",
		Aliases: []string{"show"},
		Short:   "Show one or more admin users",
		Long: strings.TrimSpace(`
Fetch admin users by ID. Arguments that are not IDs are matched against
user names and emails.

Several users are fetched concurrently and printed in argument order.
`),
		Example: strings.TrimSpace(`
  bullion users get 64b7f0c2a1e4d93f12ab34cd
  bullion users get "ada" "grace" --json
  bullion users get ada --save-photo ada.jpg
`),
		Args: cobra.MinimumNArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			if savePhoto != "" && len(args) != 1 {
				return fmt.Errorf("--save-photo accepts exactly one user")
			}
			if concurrency <= 0 {
				return fmt.Errorf("--concurrency must be > 0")
			}

			client, err := getAuthedClient(cmd.Context())
			if err != nil {
				return err
			}
			resolver := newUserResolver(client)
			ioStreams := iocontext.GetIO(cmd.Context())

			results := runBulkOperation(cmd.Context(), args, concurrency, progress, ioStreams.ErrOut,
				func(ctx context.Context, arg string) (*api.User, error) {
					id, err := resolver.resolve(ctx, arg)
					if err != nil {
						return nil, err
					}
					return client.Users().Get(ctx, id)
				})

			if len(results) == 1 && !results[0].Success {
				return results[0].Error
			}

			var users []api.User
			for _, r := range results {
				if r.Success {
					users = append(users, *r.Data)
				} else {
					_, _ = fmt.Fprintf(ioStreams.ErrOut, "%s: %v\n", r.ID, r.Error)
				}
			}

			if savePhoto != "" {
				if err := writePhoto(savePhoto, users[0]); err != nil {
					return err
				}
			}

			if isJSON(cmd) {
				if len(args) == 1 {
					if err := printJSON(cmd, userJSON(users[0])); err != nil {
						return err
					}
				} else {
					views := make([]userView, len(users))
					for i, u := range users {
						views[i] = userJSON(u)
					}
					if err := printJSON(cmd, views); err != nil {
						return err
					}
				}
			} else {
				for i, u := range users {
					if i > 0 {
						_, _ = fmt.Fprintln(ioStreams.Out)
					}
					writeUserDetail(ioStreams.Out, u)
				}
				if savePhoto != "" {
					printAction(cmd, "Saved", "photo to", savePhoto, "")
				}
			}

			if _, failed := countResults(results); failed > 0 {
				firstErr := results[0].Error
				for _, r := range results {
					if !r.Success {
						firstErr = r.Error
						break
					}
				}
				return fmt.Errorf("%d of %d lookups failed: %w", failed, len(results), firstErr)
			}
			return nil
		}),
	}

	cmd.Flags().StringVar(&savePhoto, "save-photo", "", "Write the user's photo to this file")
	cmd.Flags().Int64Var(&concurrency, "concurrency", DefaultConcurrency, "Maximum concurrent requests")
	cmd.Flags().BoolVar(&progress, "progress", false, "Show progress on stderr")
	flagAlias(cmd.Flags(), "concurrency", "conc")

	return cmd
}

func newUsersUpdateCmd() *cobra.Command {
	var form adminFormFlags

	cmd := &cobra.Command{
		Use:     "update ID|NAME",
		Aliases: []string{"edit"},
		Short:   "Update an admin user",
		Long: strings.TrimSpace(`
Change the given fields of an admin user. Fields that are not passed keep
their current values.
`),
		Example: strings.TrimSpace(`
  bullion users update ada --phone 5559876
  bullion users update 64b7f0c2a1e4d93f12ab34cd --photo new.jpg --dry-run
`),
		Args: cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			adminForm, err := form.build(cmd, false)
			if err != nil {
				return err
			}

			client, err := getAuthedClient(cmd.Context())
			if err != nil {
				return err
			}
			id, err := newUserResolver(client).resolve(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			if dryrun.IsEnabled(cmd.Context()) {
				return writePreview(cmd, newPreview("update user "+id, api.UpdateUser(id), client.BaseURL, adminForm))
			}

			user, err := client.Users().Update(cmd.Context(), id, adminForm)
			if err != nil {
				return err
			}
			forgetUsers(client.BaseURL)

			if isJSON(cmd) {
				return printJSON(cmd, userJSON(*user))
			}
			printAction(cmd, "Updated", "user", user.ID, user.DisplayName())
			return nil
		}),
	}

	form.register(cmd.Flags())

	return cmd
}

func writeUserDetail(w io.Writer, u api.User) {
	_, _ = fmt.Fprintf(w, "ID:            %s\n", u.ID)
	_, _ = fmt.Fprintf(w, "Name:          %s\n", u.DisplayName())
	_, _ = fmt.Fprintf(w, "Email:         %s\n", u.Email)
	_, _ = fmt.Fprintf(w, "Gender:        %s\n", u.GenderLabel())
	_, _ = fmt.Fprintf(w, "Date of birth: %s\n", u.FormattedDOB())
	_, _ = fmt.Fprintf(w, "Phone:         %s\n", orNA(deref(u.Phone)))
	_, _ = fmt.Fprintf(w, "Address:       %s\n", orNA(deref(u.Address)))
	photo := "no"
	if deref(u.Photo) != "" {
		photo = "yes"
	}
	_, _ = fmt.Fprintf(w, "Photo:         %s\n", photo)
}

func writePhoto(path string, u api.User) error {
	data, err := u.PhotoBytes()
	if err != nil {
		return fmt.Errorf("failed to decode photo of user %s: %w", u.ID, err)
	}
	if len(data) == 0 {
		return fmt.Errorf("user %s has no photo", u.ID)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write photo: %w", err)
	}
	return nil
}

func rememberUsers(baseURL string, users []api.User) {
	if len(users) == 0 {
		return
	}
	store, closeStore := cache.Open(usersCacheKey, baseURL)
	defer func() { _ = closeStore() }()

	var known []resolve.Named
	store.Get(&known)
	seen := make(map[string]int, len(known))
	for i, n := range known {
		seen[n.ID] = i
	}
	for _, u := range users {
		n := resolve.Named{ID: u.ID, Name: u.DisplayName(), Email: u.Email}
		if i, ok := seen[u.ID]; ok {
			known[i] = n
			continue
		}
		seen[u.ID] = len(known)
		known = append(known, n)
	}
	store.Put(known)
}

func forgetUsers(baseURL string) {
	store, closeStore := cache.Open(usersCacheKey, baseURL)
	defer func() { _ = closeStore() }()
	store.Clear()
}

// userResolver maps ID-or-name arguments to user IDs. The user directory
// comes from the cache when fresh, else from the API. A cached directory may
// hold only the pages `users list` happened to show, so a name it cannot
// match triggers one reload from the API.
type userResolver struct {
	client  *api.Client
	baseURL string

	mu     sync.Mutex
	users  []resolve.Named
	loaded bool
	listed bool // users came from the API during this run
}

func newUserResolver(client *api.Client) *userResolver {
	return &userResolver{client: client, baseURL: client.BaseURL}
}

func (r *userResolver) resolve(ctx context.Context, arg string) (string, error) {
	arg = strings.TrimSpace(arg)
	if resolve.LooksLikeID(arg) {
		return arg, nil
	}

	users, listed, err := r.directory(ctx, false)
	if err != nil {
		return "", err
	}
	id, err := resolve.FuzzyMatch(arg, users)
	if isNoMatch(err) && !listed {
		if users, _, err = r.directory(ctx, true); err != nil {
			return "", err
		}
		id, err = resolve.FuzzyMatch(arg, users)
	}
	if isNoMatch(err) {
		return "", noMatchError(arg, users)
	}
	return id, err
}

// directory returns the known users and whether they were listed from the
// API during this run. With reload set, a cached directory is replaced by a
// fresh listing.
func (r *userResolver) directory(ctx context.Context, reload bool) ([]resolve.Named, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.loaded && (r.listed || !reload) {
		return r.users, r.listed, nil
	}

	store, closeStore := cache.Open(usersCacheKey, r.baseURL)
	defer func() { _ = closeStore() }()

	if !r.loaded {
		var named []resolve.Named
		if store.Get(&named) && len(named) > 0 {
			r.users, r.loaded = named, true
			if !reload {
				return r.users, false, nil
			}
		}
	}

	users, err := r.client.Users().List(ctx, 0, resolvePageSize)
	if err != nil {
		return nil, false, err
	}
	named := make([]resolve.Named, len(users))
	for i, u := range users {
		named[i] = resolve.Named{ID: u.ID, Name: u.DisplayName(), Email: u.Email}
	}
	store.Put(named)
	r.users, r.loaded, r.listed = named, true, true
	return r.users, true, nil
}

func isNoMatch(err error) bool {
	return errors.Is(err, resolve.ErrNoMatch) || errors.Is(err, resolve.ErrEmptyItems)
}

// maxSuggestions caps the names offered when nothing matches.
const maxSuggestions = 3

// noMatchError reports arg as unmatched and offers users that match any
// single word of it.
func noMatchError(arg string, users []resolve.Named) error {
	var names []string
	seen := make(map[string]bool)
	for _, word := range strings.Fields(arg) {
		for _, m := range resolve.FuzzyMatchAll(word, users, maxSuggestions) {
			if seen[m.ID] || len(names) == maxSuggestions {
				continue
			}
			seen[m.ID] = true
			names = append(names, fmt.Sprintf("%s (%s)", m.Name, m.ID))
		}
	}
	if len(names) == 0 {
		return fmt.Errorf("%w for %q", resolve.ErrNoMatch, arg)
	}
	return fmt.Errorf("%w for %q; did you mean: %s", resolve.ErrNoMatch, arg, strings.Join(names, ", "))
}
