package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Drivers de armazenamento suportados.
const (
	StorageMemory    = "memory"
	StorageSQLite    = "sqlite"
	StorageMongo     = "mongo"
	StorageFirestore = "firestore"
)

// Configuration reúne tudo o que o servidor precisa para rodar.
type Configuration struct {
	Port        string `env:"PORT" envDefault:"8080"`
	CORSOrigins string `env:"CORS_ORIGINS" envDefault:"*"` // Separados por vírgula
	JWTSecret   string `env:"JWT_SECRET"`                   // Vazio desativa a autenticação

	StorageDriver       string `env:"STORAGE_DRIVER" envDefault:"memory"`
	SQLitePath          string `env:"SQLITE_PATH" envDefault:"data/relatorios.db"`
	MongoURL            string `env:"MONGO_URL"`
	DBName              string `env:"DB_NAME" envDefault:"helibombas"`
	FirestoreProjectID  string `env:"FIRESTORE_PROJECT_ID"`
	FirestoreDatabaseID string `env:"FIRESTORE_DATABASE_ID" envDefault:"(default)"`

	LLMAPIKey  string `env:"LLM_API_KEY"`
	LLMBaseURL string `env:"LLM_BASE_URL"`
	LLMModel   string `env:"LLM_MODEL" envDefault:"gpt-4o"`

	Log LogConfig
}

// LogConfig controla formato, nível e destino dos logs.
type LogConfig struct {
	Level      string `env:"LOG_LEVEL" envDefault:"info"`   // trace, debug, info, warn, error
	Format     string `env:"LOG_FORMAT" envDefault:"text"`  // text, json
	Output     string `env:"LOG_OUTPUT" envDefault:"stdout"` // stdout, file, both
	Path       string `env:"LOG_PATH" envDefault:"./logs"`
	File       string `env:"LOG_FILE" envDefault:"app.log"`
	MaxSize    int    `env:"LOG_MAX_SIZE" envDefault:"100"` // MB
	MaxBackups int    `env:"LOG_MAX_BACKUPS" envDefault:"7"`
	MaxAge     int    `env:"LOG_MAX_AGE" envDefault:"7"` // dias
	Compress   bool   `env:"LOG_COMPRESS" envDefault:"true"`
}

// Load lê os arquivos .env informados (ou ".env", se existir) e depois as
// variáveis de ambiente. Variáveis já definidas no ambiente têm prioridade.
func Load(files ...string) (*Configuration, error) {
	if len(files) == 0 {
		if _, err := os.Stat(".env"); err == nil {
			files = []string{".env"}
		}
	}
	if len(files) > 0 {
		if err := godotenv.Load(files...); err != nil {
			return nil, fmt.Errorf("não foi possível carregar %v: %w", files, err)
		}
	}

	cfg := Configuration{}
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("erro ao ler configuração: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate confere se o driver escolhido tem o que precisa.
func (c *Configuration) Validate() error {
	c.StorageDriver = strings.ToLower(strings.TrimSpace(c.StorageDriver))
	switch c.StorageDriver {
	case StorageMemory:
	case StorageSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH é obrigatório para o driver %s", c.StorageDriver)
		}
	case StorageMongo:
		if c.MongoURL == "" {
			return fmt.Errorf("MONGO_URL é obrigatório para o driver %s", c.StorageDriver)
		}
	case StorageFirestore:
		if c.FirestoreProjectID == "" {
			return fmt.Errorf("FIRESTORE_PROJECT_ID é obrigatório para o driver %s", c.StorageDriver)
		}
	default:
		return fmt.Errorf("STORAGE_DRIVER desconhecido: %q", c.StorageDriver)
	}
	return nil
}

// AllowedOrigins devolve a lista de origens de CORS_ORIGINS.
func (c *Configuration) AllowedOrigins() []string {
	var out []string
	for _, o := range strings.Split(c.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}
