package printer

import (
	"fmt"
	"os"

	"github.com/hokaccha/go-prettyjson"
	"github.com/logrusorgru/aurora"
	"github.com/olekukonko/tablewriter"

	"github.com/batchcorp/frugalctl/types"
)

type Printer struct {
	PrintFunc func(format string, a ...interface{}) (n int, err error)
}

func New() *Printer {
	return &Printer{
		PrintFunc: fmt.Printf,
	}
}

// Error is a convenience function for printing errors.
func (p *Printer) Error(str string) {
	p.PrintFunc("%s: %s\n", aurora.Red(">> ERROR"), str)
}

// Print is a convenience function for printing regular output.
func (p *Printer) Print(str string) {
	p.PrintFunc("%s\n", str)
}

var std = New()

// Error prints an error via the default printer.
func Error(str string) {
	std.Error(str)
}

// Print prints regular output via the default printer.
func Print(str string) {
	std.Print(str)
}

// PrettyJSON colorizes and re-indents a JSON document for terminal output.
// The input is returned unchanged if it cannot be formatted.
func PrettyJSON(data []byte) []byte {
	colorized, err := prettyjson.Format(data)
	if err != nil {
		return data
	}

	return colorized
}

// PrintEnvelope renders the envelope metadata and headers of a decoded
// document as tables on stderr, keeping stdout clean for the document
// itself.
func PrintEnvelope(doc *types.Document) {
	md, ok := doc.Metadata.(*types.Metadata)
	if !ok {
		return
	}

	fmt.Fprintf(os.Stderr, "\n%s\n\n", aurora.Cyan("------------- [ENVELOPE] -------------"))

	table := tablewriter.NewWriter(os.Stderr)
	table.SetHeader([]string{"Field", "Value"})
	table.Append([]string{"message_length", fmt.Sprintf("%d", md.MessageLength)})
	table.Append([]string{"version", fmt.Sprintf("%d", md.Version)})
	table.Append([]string{"header_length", fmt.Sprintf("%d", md.HeaderLength)})
	table.Render()

	if len(doc.Headers) == 0 {
		return
	}

	fmt.Fprintf(os.Stderr, "\n%s\n\n", aurora.Cyan("------------- [HEADERS] --------------"))

	table = tablewriter.NewWriter(os.Stderr)
	table.SetHeader([]string{"Key", "Value"})

	for _, kv := range doc.Headers {
		table.Append([]string{kv.Key, fmt.Sprintf("%v", kv.Value)})
	}

	table.Render()
}
