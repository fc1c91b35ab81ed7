package storage

import (
	"net/url"
	"strings"

	pkgerrors "github.com/pkg/errors"
)

type Serializable interface {
	Serialize() ([]byte, error)
}

type Deserializable interface {
	Deserialize([]byte) error
}

type IterItem struct {
	N     uint64
	Key   []byte
	Value []byte
}

func (i IterItem) Clone() IterItem {
	n := IterItem{N: i.N}
	n.Key = append([]byte{}, i.Key...)
	n.Value = append([]byte{}, i.Value...)

	return n
}

type Item struct {
	Key   string
	Value interface{}
}

// Config selects the storage backend, `memory://` or `file:///<path>`.
type Config struct {
	Scheme string
	Path   string
}

func NewConfigFromString(s string) (*Config, error) {
	u, err := url.Parse(s)
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "invalid storage uri, %q", s)
	}

	config := &Config{Scheme: strings.ToLower(u.Scheme)}
	switch config.Scheme {
	case "memory":
	case "file":
		config.Path = u.Path
		if len(config.Path) < 1 {
			return nil, pkgerrors.Errorf("storage path is missing, %q", s)
		}
	default:
		return nil, pkgerrors.Errorf("unsupported storage scheme, %q", u.Scheme)
	}

	return config, nil
}

func (c Config) String() string {
	if c.Scheme == "memory" {
		return "memory://"
	}

	return c.Scheme + "://" + c.Path
}
