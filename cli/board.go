package cli

import (
	"context"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"go.uber.org/multierr"

	"go.viam.com/pinio/components/board"
	"go.viam.com/pinio/components/board/fake"
	// for boards.
	_ "go.viam.com/pinio/components/board/register"
	"go.viam.com/pinio/logging"
)

// newLogger returns a logger writing to the app's error stream at the level picked by --debug
// or --log-level, or one that writes nowhere.
func newLogger(c *cli.Context) (logging.Logger, error) {
	logger := logging.NewBlankLogger("pinio")
	levelName := c.String(generalFlagLogLevel)
	if c.Bool(generalFlagDebug) {
		levelName = "debug"
	}
	if levelName == "" {
		return logger, nil
	}
	level, err := logging.LevelFromString(levelName)
	if err != nil {
		return nil, err
	}
	logger.SetLevel(level)
	logger.AddAppender(logging.NewWriterAppender(c.App.ErrWriter))
	return logger, nil
}

// newBoard brings up the board described by the --config file and waits until it is ready.
func newBoard(c *cli.Context) (*board.Board, error) {
	logger, err := newLogger(c)
	if err != nil {
		return nil, err
	}

	conf := &board.Config{Model: fake.Model}
	if path := c.String(generalFlagConfig); path != "" {
		if conf, err = board.ReadConfigFile(path); err != nil {
			return nil, err
		}
	} else {
		warningf(c.App.ErrWriter, "no --%s given, using a fake board", generalFlagConfig)
	}

	b, err := board.NewBoardFromConfig(c.Context, *conf, logger)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(c.Context, c.Duration(generalFlagTimeout))
	defer cancel()
	if err := b.Wait(ctx); err != nil {
		// ctx may already be done; Close still has to wait for start-up to release the pins.
		return nil, multierr.Combine(errors.Wrapf(err, "board %q did not start", b.Name()), b.Close(context.Background()))
	}
	return b, nil
}

// withBoard runs f against a freshly started board and closes the board afterwards.
func withBoard(c *cli.Context, f func(b *board.Board) error) (err error) {
	b, err := newBoard(c)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Combine(err, b.Close(context.Background()))
	}()
	return f(b)
}

func pinArg(c *cli.Context, idx int) (int, error) {
	arg := c.Args().Get(idx)
	if arg == "" {
		return 0, errors.Errorf("missing argument, usage: %s %s", c.Command.Name, c.Command.ArgsUsage)
	}
	pin, err := strconv.Atoi(arg)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid pin %q", arg)
	}
	return pin, nil
}

// ListModelsAction is the corresponding Action for 'models'.
func ListModelsAction(c *cli.Context) error {
	for _, model := range board.RegisteredModels() {
		printf(c.App.Writer, "%s", model)
	}
	return nil
}

// ListPinsAction is the corresponding Action for 'pins'.
func ListPinsAction(c *cli.Context) error {
	return withBoard(c, func(b *board.Board) error {
		states := map[int]board.PinState{}
		for _, state := range b.PinStates() {
			states[state.Descriptor.Index] = state
		}

		t := table.NewWriter()
		t.AppendHeader(table.Row{"#", "Name", "Modes", "Analog", "Mode", "Value", "Status"})
		for _, desc := range b.Pins() {
			modes := make([]string, 0, len(desc.SupportedModes))
			for _, mode := range desc.SupportedModes {
				modes = append(modes, mode.String())
			}
			row := table.Row{desc.Index, desc.Name, strings.Join(modes, ","), desc.Analog}
			if state, ok := states[desc.Index]; ok {
				row = append(row, state.Mode, state.Value, state.Status)
			} else {
				row = append(row, "", "", "")
			}
			t.AppendRow(row)
		}
		printf(c.App.Writer, "%s", t.Render())
		return nil
	})
}

// PinModeAction is the corresponding Action for 'mode'.
func PinModeAction(c *cli.Context) error {
	pin, err := pinArg(c, 0)
	if err != nil {
		return err
	}
	mode, err := board.ParseMode(c.Args().Get(1))
	if err != nil {
		return err
	}
	return withBoard(c, func(b *board.Board) error {
		if err := b.PinMode(c.Context, pin, mode); err != nil {
			return err
		}
		state, err := b.PinState(pin)
		if err != nil {
			return err
		}
		printf(c.App.Writer, "pin %d is now %s", pin, state.Mode)
		return nil
	})
}

// readMode is the mode a pin is put into before it is read from.
func readMode(analog bool) board.Mode {
	if analog {
		return board.ModeAnalog
	}
	return board.ModeInput
}

// ReadAction is the corresponding Action for 'read'.
func ReadAction(c *cli.Context) error {
	pin, err := pinArg(c, 0)
	if err != nil {
		return err
	}
	analog := c.Bool(readFlagAnalog)
	return withBoard(c, func(b *board.Board) error {
		if err := b.PinMode(c.Context, pin, readMode(analog)); err != nil {
			return err
		}
		var value int
		if analog {
			value, err = b.ReadAnalog(c.Context, pin)
		} else {
			value, err = b.ReadDigital(c.Context, pin)
		}
		if err != nil {
			return err
		}
		printf(c.App.Writer, "%d", value)
		return nil
	})
}

// WriteAction is the corresponding Action for 'write'.
func WriteAction(c *cli.Context) error {
	pin, err := pinArg(c, 0)
	if err != nil {
		return err
	}
	value, err := strconv.Atoi(c.Args().Get(1))
	if err != nil {
		return errors.Wrapf(err, "invalid value %q", c.Args().Get(1))
	}
	analog := c.Bool(readFlagAnalog)
	return withBoard(c, func(b *board.Board) error {
		if analog {
			if err := b.PinMode(c.Context, pin, board.ModePWM); err != nil {
				return err
			}
			return b.AnalogWrite(c.Context, pin, value)
		}
		if err := b.PinMode(c.Context, pin, board.ModeOutput); err != nil {
			return err
		}
		return b.DigitalWrite(c.Context, pin, value)
	})
}

// WatchAction is the corresponding Action for 'watch'.
func WatchAction(c *cli.Context) error {
	pin, err := pinArg(c, 0)
	if err != nil {
		return err
	}
	analog := c.Bool(readFlagAnalog)
	return withBoard(c, func(b *board.Board) error {
		if err := b.PinMode(c.Context, pin, readMode(analog)); err != nil {
			return err
		}

		ctx := c.Context
		if d := c.Duration(watchFlagDuration); d > 0 {
			var cancel func()
			ctx, cancel = context.WithTimeout(ctx, d)
			defer cancel()
		}

		handler := func(value int) {
			printf(c.App.Writer, "%d", value)
		}
		if analog {
			err = b.AnalogRead(ctx, pin, handler)
		} else {
			err = b.DigitalRead(ctx, pin, handler)
		}
		if err != nil {
			return err
		}
		<-ctx.Done()
		b.StopReporting(pin)
		return nil
	})
}

// ResetAction is the corresponding Action for 'reset'.
func ResetAction(c *cli.Context) error {
	return board.Reset()
}
