package reader

import (
	"io"

	"github.com/DjordjeVuckovic/ticker-news/pkg/apis"
	"gopkg.in/yaml.v3"
)

type YAMLConfigLoader struct {
	reader io.Reader
}

func NewYAMLConfigLoader(reader io.Reader) *YAMLConfigLoader {
	return &YAMLConfigLoader{
		reader: reader,
	}
}

func (cl *YAMLConfigLoader) Load(validate bool) (*apis.TickerList, error) {
	decoder := yaml.NewDecoder(cl.reader)
	decoder.KnownFields(true)

	var list apis.TickerList
	if err := decoder.Decode(&list); err != nil {
		return nil, err
	}
	if validate {
		if err := list.Validate(); err != nil {
			return nil, err
		}
	}
	return &list, nil
}
