package expressions

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/flowvine/flowvine/pkg/domain"

	"github.com/go-viper/mapstructure/v2"
	"github.com/rs/zerolog"
)

// SettingsBinder implements domain.IntegrationParameterBinder. Node settings
// are overlaid with {{ path }} references resolved against the current item,
// then decoded into the action's typed parameter struct.
type SettingsBinder struct {
	exprRegex *regexp.Regexp
	logger    zerolog.Logger
}

var _ domain.IntegrationParameterBinder = (*SettingsBinder)(nil)

type SettingsBinderOptions struct {
	Logger zerolog.Logger
}

func DefaultSettingsBinderOptions() SettingsBinderOptions {
	return SettingsBinderOptions{
		Logger: zerolog.Nop(),
	}
}

func NewSettingsBinder(opts SettingsBinderOptions) *SettingsBinder {
	return &SettingsBinder{
		exprRegex: regexp.MustCompile(`\{\{(.*?)\}\}`),
		logger:    opts.Logger,
	}
}

func (b *SettingsBinder) BindToStruct(ctx context.Context, item any, params any, expressions map[string]any) error {
	resolved := make(map[string]any, len(expressions))

	for key, value := range expressions {
		resolved[key] = b.resolveValue(item, value)
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           params,
		TagName:          "json",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return fmt.Errorf("failed to build settings decoder: %w", err)
	}

	if err := decoder.Decode(resolved); err != nil {
		return fmt.Errorf("failed to bind settings: %w", err)
	}

	return nil
}

func (b *SettingsBinder) resolveValue(item any, value any) any {
	switch typed := value.(type) {
	case string:
		return b.resolveString(item, typed)
	case map[string]any:
		resolved := make(map[string]any, len(typed))
		for key, nested := range typed {
			resolved[key] = b.resolveValue(item, nested)
		}
		return resolved
	case []any:
		resolved := make([]any, 0, len(typed))
		for _, nested := range typed {
			resolved = append(resolved, b.resolveValue(item, nested))
		}
		return resolved
	default:
		return value
	}
}

func (b *SettingsBinder) resolveString(item any, value string) any {
	matches := b.exprRegex.FindAllStringSubmatch(value, -1)
	if len(matches) == 0 {
		return value
	}

	// A value that is a single expression keeps the referenced type.
	if len(matches) == 1 && strings.TrimSpace(value) == matches[0][0] {
		resolved, ok := GetValueByPath(item, strings.TrimSpace(matches[0][1]))
		if !ok {
			b.logger.Debug().Str("path", matches[0][1]).Msg("expression path not found in item")
			return nil
		}
		return resolved
	}

	return b.exprRegex.ReplaceAllStringFunc(value, func(match string) string {
		path := strings.TrimSpace(b.exprRegex.FindStringSubmatch(match)[1])

		resolved, ok := GetValueByPath(item, path)
		if !ok {
			return ""
		}

		return fmt.Sprintf("%v", resolved)
	})
}
