package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/bullion/bullion-cli/internal/api"
	"github.com/bullion/bullion-cli/internal/cli"
	"github.com/bullion/bullion-cli/internal/dryrun"
	"github.com/bullion/bullion-cli/internal/iocontext"
	"github.com/bullion/bullion-cli/internal/validation"
)

// nowFunc is the clock used for relative dates of birth.
var nowFunc = time.Now

// adminFormFlags are the account fields shared by register and users update.
type adminFormFlags struct {
	name          string
	gender        string
	dob           string
	email         string
	phone         string
	address       string
	password      string
	passwordStdin bool
	photo         string
}

func (f *adminFormFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.name, "name", "", "Full name")
	fs.StringVar(&f.gender, "gender", "", "Gender: "+strings.Join(validation.Genders, "|"))
	fs.StringVar(&f.dob, "dob", "", "Date of birth (YYYY-MM-DD, DD/MM/YYYY, DD/MM/YY, \"30y ago\")")
	fs.StringVar(&f.email, "email", "", "Email address")
	fs.StringVar(&f.phone, "phone", "", "Phone number (digits only)")
	fs.StringVar(&f.address, "address", "", "Postal address")
	fs.StringVar(&f.password, "password", "", "Password (min 8 characters, 1 capital letter, 1 number)")
	fs.BoolVar(&f.passwordStdin, "password-stdin", false, "Read the password from stdin")
	fs.StringVar(&f.photo, "photo", "", "JPEG photo file, max 5MB (- for stdin)")
	flagAlias(fs, "dob", "date-of-birth")
	flagAlias(fs, "phone", "ph")
	flagAlias(fs, "address", "addr")
	flagAlias(fs, "password", "pw")
}

// build validates the flags and returns the form. With requireAll every
// registration field must be present; otherwise at least one field must be.
func (f *adminFormFlags) build(cmd *cobra.Command, requireAll bool) (api.AdminForm, error) {
	if f.passwordStdin && f.password != "" {
		return api.AdminForm{}, fmt.Errorf("--password conflicts with --password-stdin")
	}
	if f.passwordStdin && strings.TrimSpace(f.photo) == "-" {
		return api.AdminForm{}, fmt.Errorf("--password-stdin conflicts with --photo -")
	}

	form := api.AdminForm{
		Name:    strings.TrimSpace(f.name),
		Email:   strings.TrimSpace(f.email),
		Phone:   strings.TrimSpace(f.phone),
		Address: strings.TrimSpace(f.address),
	}

	if f.passwordStdin {
		line, err := iocontext.GetIO(cmd.Context()).ReadLine()
		if err != nil {
			return api.AdminForm{}, fmt.Errorf("--password-stdin: %w", err)
		}
		form.Password = line
	} else {
		form.Password = f.password
	}

	if requireAll {
		required := []struct{ flag, value string }{
			{"--name", form.Name},
			{"--gender", strings.TrimSpace(f.gender)},
			{"--dob", strings.TrimSpace(f.dob)},
			{"--email", form.Email},
			{"--phone", form.Phone},
			{"--password", form.Password},
			{"--photo", strings.TrimSpace(f.photo)},
		}
		var missing []string
		for _, r := range required {
			if r.value == "" {
				missing = append(missing, r.flag)
			}
		}
		if len(missing) > 0 {
			return api.AdminForm{}, fmt.Errorf("%s is required", strings.Join(missing, ", "))
		}
	}

	gender, err := validation.NormalizeGender(f.gender)
	if err != nil {
		return api.AdminForm{}, fmt.Errorf("invalid value for --gender: %w", err)
	}
	form.Gender = gender

	if dob := strings.TrimSpace(f.dob); dob != "" {
		form.DateOfBirth, err = cli.ParseBirthDate(dob, nowFunc())
		if err != nil {
			return api.AdminForm{}, fmt.Errorf("invalid value for --dob: %w", err)
		}
	}

	checks := []struct {
		flag  string
		check func(string) error
		value string
	}{
		{"--name", validation.ValidateName, form.Name},
		{"--email", validation.ValidateEmail, form.Email},
		{"--phone", validation.ValidatePhone, form.Phone},
		{"--address", validation.ValidateAddress, form.Address},
		{"--password", validation.ValidatePassword, form.Password},
	}
	for _, c := range checks {
		if err := c.check(c.value); err != nil {
			return api.AdminForm{}, fmt.Errorf("invalid value for %s: %w", c.flag, err)
		}
	}

	form.Photo, err = readPhoto(cmd, f.photo)
	if err != nil {
		return api.AdminForm{}, err
	}
	if err := validation.ValidatePhoto(form.Photo); err != nil {
		return api.AdminForm{}, fmt.Errorf("invalid value for --photo: %w", err)
	}

	if !requireAll && len(form.Fields()) == 0 && form.File() == nil {
		return api.AdminForm{}, fmt.Errorf("at least one field to update is required")
	}

	return form, nil
}

// writePreview prints what a write would send in the current output mode.
func writePreview(cmd *cobra.Command, preview dryrun.Preview) error {
	if isJSON(cmd) {
		return printJSON(cmd, map[string]any{"dry_run": preview.Masked()})
	}
	preview.Write(iocontext.GetIO(cmd.Context()).Out)
	return nil
}

func newPreview(operation string, ep api.Endpoint, baseURL string, form api.AdminForm) dryrun.Preview {
	method, url := ep.Resolve(baseURL)
	return dryrun.Preview{
		Operation:  operation,
		Method:     method,
		URL:        url,
		Fields:     form.Fields(),
		PhotoBytes: len(form.Photo),
	}
}

func newRegisterCmd() *cobra.Command {
	var form adminFormFlags

	cmd := &cobra.Command{
		Use:     "register",
		Aliases: []string{"reg"},
		Short:   "Register a new admin account",
		Long: strings.TrimSpace(`
Create an admin account. The request is sent as multipart/form-data with the
photo as a JPEG file part.

Registration does not need a session.
`),
		Example: strings.TrimSpace(`
  bullion register --name "Ada Lovelace" --gender female --dob 1990-12-10 \
    --email ada@example.com --phone 5551234 --photo ada.jpg --password-stdin

  # Preview the request
  bullion register ... --dry-run
`),
		Args: cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			adminForm, err := form.build(cmd, true)
			if err != nil {
				return err
			}

			client, cfg, err := newClientFactory().client()
			if err != nil {
				return err
			}

			if dryrun.IsEnabled(cmd.Context()) {
				return writePreview(cmd, newPreview("register admin "+adminForm.Email, api.Register(), cfg.BaseURL, adminForm))
			}

			user, err := client.Auth().Register(cmd.Context(), adminForm)
			if err != nil {
				return err
			}

			if isJSON(cmd) {
				return printJSON(cmd, userJSON(*user))
			}
			printAction(cmd, "Registered", "user", user.ID, user.DisplayName())
			return nil
		}),
	}

	form.register(cmd.Flags())

	return cmd
}
