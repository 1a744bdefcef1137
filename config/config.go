package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

//go:embed config.yml
var embeddedConfig []byte

type Config struct {
	Mode   string `mapstructure:"mode"`
	Server struct {
		HTTPPort string        `mapstructure:"HTTPPort"`
		Timeout  time.Duration `mapstructure:"HTTPTimeout"`
	} `mapstructure:"server"`
	Cache struct {
		Path string `mapstructure:"path"`
	} `mapstructure:"cache"`
	Supabase struct {
		URL   string `mapstructure:"url"`
		Key   string `mapstructure:"key"`
		Table string `mapstructure:"table"`
	} `mapstructure:"supabase"`
	Gemini struct {
		APIKey string `mapstructure:"apiKey"`
		Model  string `mapstructure:"model"`
	} `mapstructure:"gemini"`
	JWT struct {
		SecretKey   string        `mapstructure:"secretKey"`
		TokenExpiry time.Duration `mapstructure:"tokenExpiry"`
	} `mapstructure:"jwt"`
}

func InitConfig() (Config, error) {
	var config Config
	v := viper.New()

	// Add file-based config paths
	v.AddConfigPath(".")
	v.AddConfigPath("config")
	v.AddConfigPath("/app/config")

	v.SetConfigName("config")
	v.SetConfigType("yml")

	// Try to load file-based config
	err := v.ReadInConfig()
	if err != nil {
		fmt.Printf("Warning: Failed to find file-based config: %s. Falling back to embedded config.\n", err)
		if err = v.ReadConfig(bytes.NewReader(embeddedConfig)); err != nil {
			return Config{}, fmt.Errorf("failed to read embedded config: %s", err)
		}
	}

	// Secrets come from the environment. An absent Supabase pair degrades
	// to offline mode rather than failing startup.
	_ = v.BindEnv("supabase.url", "SUPABASE_URL")
	_ = v.BindEnv("supabase.key", "SUPABASE_KEY")
	_ = v.BindEnv("gemini.apiKey", "GEMINI_API_KEY")
	_ = v.BindEnv("jwt.secretKey", "JWT_SECRET_KEY")

	if err = v.Unmarshal(&config); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %s", err)
	}
	fmt.Println("Successfully loaded app configs...")
	return config, nil
}
