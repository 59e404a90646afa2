package config

import (
	"fmt"
	"os"
	"reflect"
	"strings"
	"unicode"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	"github.com/rs/zerolog"
)

// NewConfiguration loads the configuration from the defaults, the yaml file at configFile if
// not empty, and the environment variables starting with envPrefix, in this order. Environment
// variable names are lower-cased, "_" separates hierarchy levels and "__" stands for a literal
// underscore (RADIXPATH_SERVE_REDIRECT__TRAILING__SLASH matches serve.redirect_trailing_slash).
func NewConfiguration(envPrefix EnvVarPrefix, configFile ConfigurationPath) (*Configuration, error) {
	conf := defaultConfig()

	parser, err := koanfFromStruct(conf)
	if err != nil {
		return nil, err
	}

	if len(configFile) != 0 {
		raw, err := os.ReadFile(string(configFile))
		if err != nil {
			return nil, fmt.Errorf("%w: failed to read %s: %w", ErrConfiguration, configFile, err)
		}

		if err = parser.Load(rawbytes.Provider(raw), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: failed to parse %s: %w", ErrConfiguration, configFile, err)
		}
	}

	if err = parser.Load(envProvider(string(envPrefix)), nil); err != nil {
		return nil, fmt.Errorf("%w: failed to parse environment variables: %w", ErrConfiguration, err)
	}

	err = parser.UnmarshalWithConf("", &conf, koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			DecodeHook:       mapstructure.ComposeDecodeHookFunc(logLevelDecodeHookFunc),
			Metadata:         nil,
			Result:           &conf,
			WeaklyTypedInput: true,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfiguration, err)
	}

	if err = ValidateStruct(&conf); err != nil {
		return nil, err
	}

	return &conf, nil
}

func koanfFromStruct(conf any) (*koanf.Koanf, error) {
	parser := koanf.New(".")

	if err := parser.Load(structs.Provider(conf, "koanf"), nil); err != nil {
		return nil, err
	}

	keys := parser.Keys()
	// Assert all keys are lowercase
	for i := 0; i < len(keys); i++ {
		if !isLower(keys[i]) {
			return nil, fmt.Errorf("%w: field %s does not have lowercase key, use the `koanf` tag",
				ErrConfiguration, keys[i])
		}
	}

	return parser, nil
}

func envProvider(prefix string) *env.Env {
	return env.Provider(".", env.Opt{
		Prefix: prefix,
		TransformFunc: func(key, val string) (string, any) {
			tmp := strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(key, prefix)), "__", `\:\`)
			tmp = strings.ReplaceAll(tmp, "_", ".")

			return strings.ReplaceAll(tmp, `\:\`, "_"), val
		},
	})
}

func isLower(s string) bool {
	for _, r := range s {
		if !unicode.IsLower(r) && unicode.IsLetter(r) {
			return false
		}
	}

	return true
}

// logLevelDecodeHookFunc decodes zerolog levels from their names.
func logLevelDecodeHookFunc(from reflect.Type, to reflect.Type, val any) (any, error) {
	if from.Kind() != reflect.String || to != reflect.TypeOf(zerolog.Level(0)) {
		return val, nil
	}

	level, err := zerolog.ParseLevel(strings.ToLower(val.(string)))
	if err != nil {
		return nil, err
	}

	return level, nil
}
