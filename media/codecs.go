package media

import (
	"bytes"

	json "github.com/goccy/go-json"
	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"
)

func encodeJSON(data any, _ Options) ([]byte, error) {
	return json.Marshal(data)
}

func decodeJSON(data []byte, _ Options) (any, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func encodeYAML(data any, _ Options) ([]byte, error) {
	return yaml.Marshal(data)
}

func decodeYAML(data []byte, _ Options) (any, error) {
	var out any
	if err := yaml.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func encodeText(data any, _ Options) ([]byte, error) {
	s, err := cast.ToStringE(data)
	if err != nil {
		return nil, err
	}
	return []byte(s), nil
}

func decodeText(data []byte, _ Options) (any, error) {
	return string(data), nil
}
