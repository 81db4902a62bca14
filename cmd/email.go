/*
Copyright 2020 Google LLC

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"io"
	"os"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/ademuri/soundtrack-virality/internal/analysis"
)

type EmailConfig struct {
	Pipeline PipelineConfig
	From     string
	To       string
	APIKey   string
	DryRun   bool
}

var emailCmd = &cobra.Command{
	Use:   "email <address>",
	Short: "Emails the analysis report",
	Long: `Runs the analysis and emails the report, with the result tables as HTML,
through SendGrid. With --dry_run the email is printed instead.`,
	Args: cobra.ExactArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		if viper.GetString("from") == "" {
			return fmt.Errorf("required flag(s) \"from\" not set")
		}
		return nil
	},
	Run: func(cmd *cobra.Command, args []string) {
		pipeline, err := pipelineConfigFromViper()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		config := EmailConfig{
			Pipeline: pipeline,
			From:     viper.GetString("from"),
			To:       args[0],
			APIKey:   viper.GetString("sendgrid_api_key"),
			DryRun:   viper.GetBool("dryRun"),
		}
		log, err := newLogger()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		defer log.Sync()

		err = sendEmail(cmd.Context(), config, log, os.Stdout)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(emailCmd)

	var dryRun bool
	emailCmd.Flags().BoolVarP(&dryRun, "dry_run", "n", false, "When true, just print instead of emailing")
	viper.BindPFlag("dryRun", emailCmd.Flags().Lookup("dry_run"))

	var from string
	emailCmd.Flags().StringVar(&from, "from", "", "From email address")
	viper.BindPFlag("from", emailCmd.Flags().Lookup("from"))

	var apiKey string
	emailCmd.Flags().StringVar(&apiKey, "sendgrid_api_key", "", "SendGrid API key")
	viper.BindPFlag("sendgrid_api_key", emailCmd.Flags().Lookup("sendgrid_api_key"))
}

func sendEmail(ctx context.Context, config EmailConfig, log *zap.SugaredLogger, out io.Writer) error {
	res, err := runPipeline(ctx, config.Pipeline, log)
	if err != nil {
		return err
	}
	subject, body, plain, err := generateEmailContent(res)
	if err != nil {
		return err
	}

	if config.DryRun {
		fmt.Fprintf(out, "Would have sent email: \nsubject: %s\n%s\n", subject, body)
		return nil
	}
	if config.APIKey == "" {
		return fmt.Errorf("sendgrid_api_key must be set in order to send emails")
	}

	from := mail.NewEmail("soundtrack-virality", config.From)
	to := mail.NewEmail(config.To, config.To)
	message := mail.NewSingleEmail(from, subject, to, plain, body)
	client := sendgrid.NewSendClient(config.APIKey)
	resp, err := client.Send(message)
	if err != nil {
		return fmt.Errorf("sendEmail: %w", err)
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("sendEmail: status %d: %s", resp.StatusCode, resp.Body)
	}
	log.Infow("sent report", "to", config.To, "run_id", res.RunID)
	return nil
}

// generateEmailContent returns the subject, the HTML body with the result
// tables, and the plain-text report.
func generateEmailContent(res *analysis.Result) (subject string, body string, plain string, err error) {
	var text bytes.Buffer
	if err := analysis.WriteReport(&text, res); err != nil {
		return "", "", "", fmt.Errorf("rendering report: %w", err)
	}

	out := `
<html>
  <head>
<style>
td {
  padding: 0.1em 0.2em;
}
table, th, td {
  border: 1px solid black;
  border-collapse: collapse;
}
</style>
  </head>
  <body>
`
	if len(res.Insights) > 0 {
		out += "<h2>Key insights</h2>\n<ul>\n"
		for _, in := range res.Insights {
			out += fmt.Sprintf("<li><b>%s:</b> %s<br>%s</li>\n",
				html.EscapeString(in.Insight), html.EscapeString(in.Finding), html.EscapeString(in.Why))
		}
		out += "</ul>\n"
	}

	for _, t := range resultTables(res) {
		out += `
		<div>
`
		out += fmt.Sprintf("<h2>%s</h2>\n", html.EscapeString(t.title))
		if len(t.results) <= 1 {
			out += "<div>None.</div>\n"
		} else {
			out += `
			<table>
				<thead>
					<tr>
`
			for _, header := range t.results[0] {
				out += fmt.Sprintf("<th>%s</th>", html.EscapeString(header))
			}
			out += `				</tr>
			</thead>
			<tbody>`

			for _, row := range t.results[1:] {
				out += "<tr>\n"
				for _, column := range row {
					out += fmt.Sprintf("<td>%s</td>\n", html.EscapeString(column))
				}
				out += "</tr>\n"
			}
			out += `
				</tbody>
			</table>
`
		}
		out += fmt.Sprintf(`<div>%s</div>
		</div>`, html.EscapeString(t.summary))
	}

	out += fmt.Sprintf("\n<pre>%s</pre>\n  </body>\n</html>\n", html.EscapeString(text.String()))

	subject = fmt.Sprintf("Soundtrack virality report: %d songs linked (%s)",
		len(res.Linked), res.GeneratedAt.Format("2006-01-02"))
	return subject, out, text.String(), nil
}
