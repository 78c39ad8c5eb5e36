package command

import (
	"context"
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/alexanderjulianmartinez/sqlite-schema/internal/render"
	"github.com/alexanderjulianmartinez/sqlite-schema/internal/source"
	"github.com/alexanderjulianmartinez/sqlite-schema/internal/source/sqlite"
	"github.com/alexanderjulianmartinez/sqlite-schema/pkg/types"
)

const SchemaCommand = "schema"

// Handler runs one named command.
type Handler func(ctx context.Context, args []string) (*types.CommandOutput, error)

// Dispatcher maps command names to handlers. It is the whole surface a
// host sees: a name and an argument list in, a payload or an error out.
type Dispatcher struct {
	handlers map[string]Handler
	log      logrus.FieldLogger
}

// NewDispatcher returns a dispatcher with the schema command registered.
// opts are passed to every SQLite inspector it creates.
func NewDispatcher(log logrus.FieldLogger, opts ...sqlite.Option) *Dispatcher {
	if log == nil {
		log = logrus.StandardLogger()
	}
	d := &Dispatcher{
		handlers: map[string]Handler{},
		log:      log,
	}
	opts = append([]sqlite.Option{sqlite.WithLogger(log)}, opts...)
	d.Register(SchemaCommand, schemaHandler(opts))
	return d
}

func (d *Dispatcher) Register(name string, h Handler) {
	d.handlers[name] = h
}

// Commands returns the registered command names, sorted.
func (d *Dispatcher) Commands() []string {
	names := make([]string, 0, len(d.handlers))
	for name := range d.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (d *Dispatcher) Run(ctx context.Context, name string, args []string) (*types.CommandOutput, error) {
	h, ok := d.handlers[name]
	if !ok {
		return nil, &UnknownCommandError{Name: name}
	}
	out, err := h(ctx, args)
	if err != nil {
		d.log.WithField("command", name).WithError(err).Warn("command failed")
		return nil, err
	}
	return out, nil
}

type UnknownCommandError struct {
	Name string
}

func (e *UnknownCommandError) Error() string {
	return fmt.Sprintf("unknown slash command: %q", e.Name)
}

func schemaHandler(opts []sqlite.Option) Handler {
	return func(ctx context.Context, args []string) (*types.CommandOutput, error) {
		if len(args) == 0 || args[0] == "" {
			return nil, fmt.Errorf("%w: need path to db", source.ErrMissingArgument)
		}
		path := args[0]

		info, err := sqlite.NewInspector(path, opts...).Inspect(ctx)
		if err != nil {
			return nil, err
		}
		return Output(path, render.Text(info)), nil
	}
}

// Output wraps text in a single section labelled label.
func Output(label, text string) *types.CommandOutput {
	return &types.CommandOutput{
		Text: text,
		Sections: []types.Section{{
			Start: 0,
			End:   len(text),
			Label: label,
		}},
	}
}
