package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/leofalp/resflavors/core/reservation"
)

// Format names an output format.
type Format string

const (
	FormatText     Format = "text"
	FormatJSON     Format = "json"
	FormatYAML     Format = "yaml"
	FormatMarkdown Format = "markdown"
)

// ErrUnknownFormat is returned for a format name that is not supported.
var ErrUnknownFormat = errors.New("resflavors: unknown output format")

// Formats lists the supported formats.
var Formats = []Format{FormatText, FormatJSON, FormatYAML, FormatMarkdown}

// ParseFormat parses a format name, case-insensitively. "md" and "yml" are
// accepted as aliases; empty selects [FormatText].
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text", "txt":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// Write renders leases to w in the given format.
func Write(w io.Writer, format Format, leases []*reservation.Lease) error {
	switch format {
	case FormatText, "":
		return writeText(w, leases)
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(documents(leases))
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(documents(leases)); err != nil {
			return err
		}
		return enc.Close()
	case FormatMarkdown:
		return writeMarkdown(w, leases)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

func writeText(w io.Writer, leases []*reservation.Lease) error {
	var b strings.Builder
	for _, lease := range leases {
		if lease == nil {
			continue
		}
		fmt.Fprintf(&b, "Lease name: %s\n", displayName(lease))
		if lease.Err != nil {
			fmt.Fprintf(&b, "  error: %v\n", lease.Err)
			continue
		}
		for _, r := range lease.Reservations {
			fmt.Fprintf(&b, "  reservation amount: %s\n", r.Amount)
			if r.ResourceProperties != nil {
				fmt.Fprintf(&b, "  resource_properties name: %s\n", r.Name())
			}
		}
		for _, warning := range lease.Warnings {
			fmt.Fprintf(&b, "  warning: %v\n", warning)
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// MissingName stands in for a lease whose dump had no name field.
const MissingName = "n/a"

func displayName(lease *reservation.Lease) string {
	if lease.Name == "" {
		return MissingName
	}
	return lease.Name
}

// leaseDocument is the JSON and YAML shape of one lease.
type leaseDocument struct {
	ID           string                `json:"id" yaml:"id"`
	Name         string                `json:"name" yaml:"name"`
	Reservations []reservationDocument `json:"reservations" yaml:"reservations"`
	Warnings     []string              `json:"warnings,omitempty" yaml:"warnings,omitempty"`
	Error        string                `json:"error,omitempty" yaml:"error,omitempty"`
}

type reservationDocument struct {
	Amount                 reservation.Amount `json:"amount" yaml:"amount"`
	ResourcePropertiesName string             `json:"resource_properties_name,omitempty" yaml:"resource_properties_name,omitempty"`
}

func documents(leases []*reservation.Lease) []leaseDocument {
	docs := make([]leaseDocument, 0, len(leases))
	for _, lease := range leases {
		if lease == nil {
			continue
		}
		doc := leaseDocument{
			ID:           lease.ID,
			Name:         lease.Name,
			Reservations: make([]reservationDocument, 0, len(lease.Reservations)),
		}
		for _, r := range lease.Reservations {
			doc.Reservations = append(doc.Reservations, reservationDocument{
				Amount:                 r.Amount,
				ResourcePropertiesName: r.Name(),
			})
		}
		for _, warning := range lease.Warnings {
			doc.Warnings = append(doc.Warnings, warning.Error())
		}
		if lease.Err != nil {
			doc.Error = lease.Err.Error()
		}
		docs = append(docs, doc)
	}
	return docs
}
