package main

import (
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/krew-solutions/projectdesk/projectdesk/seedwork/infrastructure/repository"
	spec "github.com/krew-solutions/projectdesk/projectdesk/specification/infrastructure"
)

var timeLayouts = []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"}

// parseTime reads a date or timestamp. Values without a zone are UTC.
func parseTime(value string) (time.Time, error) {
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, value, time.UTC); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, errors.Errorf("invalid time \"%s\"", value)
}

// optionalTime is nil for a blank value.
func optionalTime(value string) (*time.Time, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}
	t, err := parseTime(value)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// parseSort reads "name,-id" as ascending name then descending id.
func parseSort(value string) []spec.Order {
	var orders []spec.Order
	for _, field := range strings.Split(value, ",") {
		field = strings.TrimSpace(field)
		switch {
		case field == "":
		case strings.HasPrefix(field, "-"):
			orders = append(orders, spec.Desc(field[1:]))
		default:
			orders = append(orders, spec.Asc(strings.TrimPrefix(field, "+")))
		}
	}
	return orders
}

// Flag values that stay unset unless given on the command line.

func int64Flag(cmd *cobra.Command, name string) (*int64, error) {
	if !cmd.Flags().Changed(name) {
		return nil, nil
	}
	v, err := cmd.Flags().GetInt64(name)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func float64Flag(cmd *cobra.Command, name string) (*float64, error) {
	if !cmd.Flags().Changed(name) {
		return nil, nil
	}
	v, err := cmd.Flags().GetFloat64(name)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

type pageFlags struct {
	number int
	size   int
	sort   string
}

func (p *pageFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&p.number, "page", 1, "page number, starting at 1")
	cmd.Flags().IntVar(&p.size, "size", 0, "page size; 0 uses the configured default")
	cmd.Flags().StringVar(&p.sort, "sort", "", "comma separated sort fields, \"-\" prefix for descending")
}

func (p *pageFlags) request() repository.PageRequest {
	return repository.PageRequest{Number: p.number, Size: p.size, Sort: parseSort(p.sort)}
}
