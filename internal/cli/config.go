package cli

import (
	"fmt"
	"net/url"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/example/followup/internal/version"
)

const masked = "redacted"

// ConfigCmd returns the config command, which prints the effective configuration.
func ConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration with secrets masked",
		Long: `Print the effective configuration with secrets masked.

The first line is a comment naming the build, so the output can be attached
to a bug report and still be loaded back with --config.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			shown := *cfg
			shown.DatabaseURL = maskURL(shown.DatabaseURL)
			mask(&shown.Email.ResendAPIKey)
			mask(&shown.Email.SMTPPassword)
			mask(&shown.Messaging.WhatsApp.Token)
			mask(&shown.Messaging.SMS.APIKey)
			mask(&shown.Messaging.SMS.Password)

			out, err := yaml.Marshal(&shown)
			if err != nil {
				return fmt.Errorf("failed to render config: %w", err)
			}
			info := version.Get()
			w := cmd.OutOrStdout()
			if _, err := fmt.Fprintf(w, "# followup commit %s built %s (%s)\n", info.Short(), info.BuildTime, info.GoVersion); err != nil {
				return err
			}
			_, err = w.Write(out)
			return err
		},
	}
}

func mask(s *string) {
	if *s != "" {
		*s = masked
	}
}

// maskURL hides the password of a database URL. Plain paths pass through.
func maskURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.User == nil {
		return raw
	}
	if _, ok := u.User.Password(); ok {
		u.User = url.UserPassword(u.User.Username(), masked)
	}
	return u.String()
}
