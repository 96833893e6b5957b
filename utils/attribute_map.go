package utils

import (
	"github.com/go-viper/mapstructure/v2"
	"github.com/pkg/errors"
)

// AttributeMap is the free-form, model specific part of a board config.
type AttributeMap map[string]interface{}

// TransformAttributeMapToStruct uses an attribute map to transform attributes to the prescribed
// format. Keys are matched against the `json` tags of the target.
func TransformAttributeMapToStruct(to interface{}, attributes AttributeMap) (interface{}, error) {
	var md mapstructure.Metadata
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		Result:           to,
		Metadata:         &md,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(attributes); err != nil {
		return nil, errors.Wrap(err, "error decoding attributes")
	}
	if len(md.Unused) != 0 {
		return nil, errors.Errorf("unknown attributes %v", md.Unused)
	}
	return to, nil
}
