package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/mcoot/squadbook/internal/model"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
	out    io.Writer
	errOut io.Writer
}

// NewOutput creates a new Output formatter
func NewOutput(format string, out, errOut io.Writer) *Output {
	return &Output{format: format, out: out, errOut: errOut}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		errData := map[string]any{
			"error": map[string]string{
				"message": err.Error(),
			},
		}
		data, _ := json.Marshal(errData)
		_, _ = fmt.Fprintln(o.errOut, string(data))
	} else {
		_, _ = fmt.Fprintf(o.errOut, "Error: %s\n", err)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		_, _ = fmt.Fprintln(o.out, string(data))
	} else {
		_, _ = fmt.Fprintln(o.out, msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.out)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case model.Player:
		o.printPlayers([]model.Player{v})
	case []model.Player:
		o.printPlayers(v)
	case UserSummary:
		o.printUsers([]UserSummary{v})
	case []UserSummary:
		o.printUsers(v)
	case HealthResult:
		o.printHealthResult(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// UserSummary is a user without its stored password
type UserSummary struct {
	ID    model.UserID `json:"id"`
	Login string       `json:"login"`
}

func summarize(users []model.User) []UserSummary {
	out := make([]UserSummary, 0, len(users))
	for _, u := range users {
		out = append(out, UserSummary{ID: u.ID, Login: u.Login})
	}
	return out
}

// HealthResult mirrors GET /healthz
type HealthResult struct {
	Status string `json:"status"`
}

func (o *Output) printPlayers(players []model.Player) {
	if len(players) == 0 {
		_, _ = fmt.Fprintln(o.out, "No players")
		return
	}
	tw := tabwriter.NewWriter(o.out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "ID\tNAME\tLAST NAME\tVALUE\tCOUNTRY\tCLUB")
	for _, p := range players {
		_, _ = fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%s\t%s\n", p.ID, p.Name, p.LastName, p.MarketValue, p.Country, p.Club)
	}
	_ = tw.Flush()
}

func (o *Output) printUsers(users []UserSummary) {
	if len(users) == 0 {
		_, _ = fmt.Fprintln(o.out, "No users")
		return
	}
	tw := tabwriter.NewWriter(o.out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "ID\tLOGIN")
	for _, u := range users {
		_, _ = fmt.Fprintf(tw, "%d\t%s\n", u.ID, u.Login)
	}
	_ = tw.Flush()
}

func (o *Output) printHealthResult(h HealthResult) {
	_, _ = fmt.Fprintf(o.out, "Status: %s\n", h.Status)
}
