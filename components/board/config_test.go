package board_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.viam.com/test"

	"go.viam.com/pinio/components/board"
	"go.viam.com/pinio/components/board/fake"
	"go.viam.com/pinio/logging"
	"go.viam.com/pinio/utils"
)

func TestConfigDefaults(t *testing.T) {
	conf := board.Config{}
	test.That(t, conf.Validate("path"), test.ShouldBeNil)
	test.That(t, conf.BoardName(), test.ShouldEqual, "RaspberryPi-IO")
	test.That(t, conf.ReportInterval(), test.ShouldEqual, 20*time.Millisecond)

	conf = board.Config{Name: "bench", ReportIntervalMs: 5}
	test.That(t, conf.BoardName(), test.ShouldEqual, "bench")
	test.That(t, conf.ReportInterval(), test.ShouldEqual, 5*time.Millisecond)

	conf.ReportIntervalMs = -1
	err := conf.Validate("path")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "path")

	conf = board.Config{Name: "my board!"}
	err = conf.Validate("path")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "must start with a letter or number")

	conf = board.Config{ConvertedAttributes: &fake.Config{Pins: []fake.PinConfig{{Modes: []string{"nope"}}}}}
	err = conf.Validate("path")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "path.attributes.pins.0")
}

func TestReadConfigFile(t *testing.T) {
	dir := t.TempDir()

	good := filepath.Join(dir, "good.json")
	test.That(t, os.WriteFile(good, []byte(`{
		"name": "bench",
		"model": "fake",
		"report_interval_ms": 50,
		"reapply_mode": true,
		"attributes": {"pins": [{"modes": ["input", "output"]}, {}]}
	}`), 0o600), test.ShouldBeNil)

	conf, err := board.ReadConfigFile(good)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, conf.Name, test.ShouldEqual, "bench")
	test.That(t, conf.Model, test.ShouldEqual, fake.Model)
	test.That(t, conf.ReportInterval(), test.ShouldEqual, 50*time.Millisecond)
	test.That(t, conf.ReapplyMode, test.ShouldBeTrue)
	_, hasPins := conf.Attributes["pins"]
	test.That(t, hasPins, test.ShouldBeTrue)

	b, err := board.NewBoardFromConfig(context.Background(), *conf, logging.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, b.Wait(context.Background()), test.ShouldBeNil)
	test.That(t, len(b.Pins()), test.ShouldEqual, 2)
	test.That(t, len(b.PinStates()), test.ShouldEqual, 1)
	test.That(t, b.Close(context.Background()), test.ShouldBeNil)

	noModel := filepath.Join(dir, "nomodel.json")
	test.That(t, os.WriteFile(noModel, []byte(`{"name": "x"}`), 0o600), test.ShouldBeNil)
	_, err = board.ReadConfigFile(noModel)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "model")

	broken := filepath.Join(dir, "broken.json")
	test.That(t, os.WriteFile(broken, []byte(`{"model": `), 0o600), test.ShouldBeNil)
	_, err = board.ReadConfigFile(broken)
	test.That(t, err, test.ShouldNotBeNil)

	_, err = board.ReadConfigFile(filepath.Join(dir, "missing.json"))
	test.That(t, err, test.ShouldNotBeNil)
}

func TestRegistry(t *testing.T) {
	test.That(t, board.RegisteredModels(), test.ShouldContain, fake.Model)
	_, ok := board.LookupModel(fake.Model)
	test.That(t, ok, test.ShouldBeTrue)
	_, ok = board.LookupModel("nonexistent")
	test.That(t, ok, test.ShouldBeFalse)

	test.That(t, func() {
		board.RegisterModel(fake.Model, board.Registration{
			Constructor: func(context.Context, board.Config, logging.Logger) (board.Platform, error) {
				return fake.NewPlatform(), nil
			},
		})
	}, test.ShouldPanic)
	test.That(t, func() { board.RegisterModel("no-constructor", board.Registration{}) }, test.ShouldPanic)

	logger := logging.NewTestLogger(t)
	_, err := board.NewBoardFromConfig(context.Background(), board.Config{Model: "nonexistent"}, logger)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "nonexistent")

	_, err = board.NewBoardFromConfig(context.Background(), board.Config{
		Model:      fake.Model,
		Attributes: utils.AttributeMap{"pinz": []interface{}{}},
	}, logger)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "pinz")

	_, err = board.NewBoardFromConfig(context.Background(), board.Config{
		Model:      fake.Model,
		Attributes: utils.AttributeMap{"pins": []interface{}{map[string]interface{}{"modes": []interface{}{"bogus"}}}},
	}, logger)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "bogus")

	board.RegisterModel("test-wrapped", board.Registration{
		Constructor: func(ctx context.Context, conf board.Config, logger logging.Logger) (board.Platform, error) {
			return board.NewPlatform(fake.NewPlatform(threePins()...), fake.NewPlatform(threePins()...)), nil
		},
	})
	b, err := board.NewBoardFromConfig(context.Background(), board.Config{Model: "test-wrapped"}, logger)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, b.Wait(context.Background()), test.ShouldBeNil)
	test.That(t, b.AnalogPins(), test.ShouldResemble, []int{2})
	test.That(t, b.Close(context.Background()), test.ShouldBeNil)
}
