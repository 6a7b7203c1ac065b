package notify

import (
	"errors"
	"fmt"
	"html"
	"strings"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/ademuri/lyrics-tools/internal/classify"
	"github.com/ademuri/lyrics-tools/internal/store"
)

const senderName = "lyrics-tools"

// Notifier emails run reports through SendGrid.
type Notifier struct {
	from string
	send func(*mail.SGMailV3) error
}

// New returns a Notifier sending from the given address with the SendGrid
// API key.
func New(apiKey, from string) (*Notifier, error) {
	if apiKey == "" || from == "" {
		return nil, errors.New("sendgrid_api_key and from must be set in order to send emails")
	}
	client := sendgrid.NewSendClient(apiKey)
	return &Notifier{
		from: from,
		send: func(m *mail.SGMailV3) error {
			resp, err := client.Send(m)
			if err != nil {
				return err
			}
			if resp.StatusCode >= 300 {
				return fmt.Errorf("sendgrid returned status %d: %s", resp.StatusCode, resp.Body)
			}
			return nil
		},
	}, nil
}

// SendRunReport emails the summary of a finished run to the given address.
func (n *Notifier) SendRunReport(to string, run store.Run, summary classify.Summary) error {
	subject, text, body := RunReport(run, summary)
	message := mail.NewSingleEmail(mail.NewEmail(senderName, n.from), subject, mail.NewEmail(to, to), text, body)
	if err := n.send(message); err != nil {
		return fmt.Errorf("sending run report: %w", err)
	}
	return nil
}

// RunReport renders the subject, plain text and HTML of a run report.
func RunReport(run store.Run, s classify.Summary) (subject, text, body string) {
	subject = fmt.Sprintf("Classificação concluída: %s (%s)", run.Profile, run.ID)

	var rows [][2]string
	rows = append(rows,
		[2]string{"Modelo", run.Model},
		[2]string{"Total analisado", fmt.Sprint(s.Total)},
		[2]string{"Ignoradas", fmt.Sprint(s.Skipped)},
	)
	if s.Total > 0 {
		rows = append(rows,
			[2]string{"Média score", fmt.Sprintf("%.2f", s.MeanScore)},
			[2]string{"Máximo", fmt.Sprintf("%.2f", s.MaxScore)},
			[2]string{"Mínimo", fmt.Sprintf("%.2f", s.MinScore)},
		)
	}
	for _, lc := range s.Levels {
		rows = append(rows, [2]string{"Nível " + string(lc.Level), fmt.Sprint(lc.Count)})
	}
	for _, fc := range s.Flags {
		rows = append(rows, [2]string{fc.Flag, fmt.Sprint(fc.Count)})
	}
	if run.CSVPath != "" {
		rows = append(rows, [2]string{"CSV", run.CSVPath}, [2]string{"JSON", run.JSONPath})
	}

	var t, h strings.Builder
	h.WriteString("<html>\n  <body>\n    <h2>" + html.EscapeString(subject) + "</h2>\n    <table>\n")
	for _, row := range rows {
		fmt.Fprintf(&t, "%s: %s\n", row[0], row[1])
		fmt.Fprintf(&h, "      <tr><td>%s</td><td>%s</td></tr>\n", html.EscapeString(row[0]), html.EscapeString(row[1]))
	}
	h.WriteString("    </table>\n  </body>\n</html>\n")
	return subject, t.String(), h.String()
}
