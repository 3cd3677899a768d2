package configs

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// SecurityConfig dibaca sekali saat start. AllowedIPs kosong = semua client boleh.
type SecurityConfig struct {
	Security struct {
		AllowedIPs []string `yaml:"allowed_ips"`
	} `yaml:"security"`
}

func (s *SecurityConfig) AllowedIPs() []string { return s.Security.AllowedIPs }

// ParseSecurityConfig menerima allowed_ips berupa list YAML atau string dipisah koma.
func ParseSecurityConfig(data []byte) (*SecurityConfig, error) {
	var raw struct {
		Security struct {
			AllowedIPs yaml.Node `yaml:"allowed_ips"`
		} `yaml:"security"`
	}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse security config: %w", err)
	}

	cfg := &SecurityConfig{}
	node := raw.Security.AllowedIPs
	switch node.Kind {
	case 0:
	case yaml.SequenceNode:
		var list []string
		if err := node.Decode(&list); err != nil {
			return nil, fmt.Errorf("parse security.allowed_ips: %w", err)
		}
		cfg.Security.AllowedIPs = cleanList(list)
	case yaml.ScalarNode:
		cfg.Security.AllowedIPs = cleanList(strings.Split(node.Value, ","))
	default:
		return nil, fmt.Errorf("security.allowed_ips must be a list or a string")
	}
	return cfg, nil
}

// LoadSecurityConfig membaca SECURITY_CONFIG (default config.yaml). File tidak ada
// bukan error. STAFF_ALLOWED_IPS, kalau diisi, menggantikan list dari file.
func LoadSecurityConfig() (*SecurityConfig, error) {
	path := GetEnv("SECURITY_CONFIG", "config.yaml")

	cfg := &SecurityConfig{}
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		logrus.WithField("path", path).Info("security config not found, staff routes are open")
	case err != nil:
		return nil, err
	default:
		if cfg, err = ParseSecurityConfig(data); err != nil {
			return nil, err
		}
	}

	if env := GetEnvList("STAFF_ALLOWED_IPS"); len(env) > 0 {
		cfg.Security.AllowedIPs = env
	}
	return cfg, nil
}

func cleanList(in []string) []string {
	var out []string
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
