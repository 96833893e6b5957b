package board

import (
	"context"
	"reflect"
	"sort"
	"sync"

	"github.com/pkg/errors"
	"github.com/samber/lo"

	"go.viam.com/pinio/logging"
	"go.viam.com/pinio/utils"
)

// A Registration tells NewBoardFromConfig how to build the platform of a board model.
type Registration struct {
	// Constructor builds the platform. conf.ConvertedAttributes holds the model's native config.
	Constructor func(ctx context.Context, conf Config, logger logging.Logger) (Platform, error)

	// NativeConfig is a pointer to the zero value of the model's native config. Attributes are
	// decoded into a fresh copy of it. Leave it nil for models without attributes.
	NativeConfig NativeConfig
}

var (
	registryMu sync.RWMutex
	registry   = map[string]Registration{}
)

// RegisterModel registers a board model. It panics if the model is registered twice or has no
// constructor, and is meant to be called from init functions.
func RegisterModel(model string, reg Registration) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if reg.Constructor == nil {
		panic(errors.Errorf("cannot register board model %q without a constructor", model))
	}
	if _, ok := registry[model]; ok {
		panic(errors.Errorf("trying to register two board models with the same name %q", model))
	}
	registry[model] = reg
}

// LookupModel returns the registration of model.
func LookupModel(model string) (Registration, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	reg, ok := registry[model]
	return reg, ok
}

// RegisteredModels returns the names of all registered models, sorted.
func RegisteredModels() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	models := lo.Keys(registry)
	sort.Strings(models)
	return models
}

// newNativeConfig returns a fresh pointer of the same type as the registered sample.
func (reg Registration) newNativeConfig() (NativeConfig, error) {
	typ := reflect.TypeOf(reg.NativeConfig)
	if typ.Kind() != reflect.Ptr {
		return nil, utils.NewUnexpectedTypeError(reflect.New(typ).Interface(), reg.NativeConfig)
	}
	native, ok := reflect.New(typ.Elem()).Interface().(NativeConfig)
	if !ok {
		return nil, utils.NewUnimplementedInterfaceError("NativeConfig", native)
	}
	return native, nil
}

// NewBoardFromConfig converts conf's attributes for its model, builds the model's platform and
// returns a board on top of it, exactly like NewBoard.
func NewBoardFromConfig(ctx context.Context, conf Config, logger logging.Logger, opts ...Option) (*Board, error) {
	reg, ok := LookupModel(conf.Model)
	if !ok {
		return nil, errors.Errorf("unknown board model %q (known: %v)", conf.Model, RegisteredModels())
	}

	if reg.NativeConfig != nil && conf.ConvertedAttributes == nil {
		native, err := reg.newNativeConfig()
		if err != nil {
			return nil, err
		}
		if _, err := utils.TransformAttributeMapToStruct(native, conf.Attributes); err != nil {
			return nil, errors.Wrapf(err, "invalid attributes for board model %q", conf.Model)
		}
		conf.ConvertedAttributes = native
	}
	if err := conf.Validate("board"); err != nil {
		return nil, err
	}

	platform, err := reg.Constructor(ctx, conf, logger)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot build board model %q", conf.Model)
	}
	return NewBoard(ctx, conf, platform, logger, opts...)
}
