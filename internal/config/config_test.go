package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Port = %d", cfg.Server.Port)
	}
	if cfg.Database.Driver != "sqlite" || cfg.Database.Path != "data/sermons.db" {
		t.Errorf("database defaults: %+v", cfg.Database)
	}
	if cfg.Storage.UploadDir != "uploads" || cfg.Storage.DataDir != "storage" {
		t.Errorf("storage defaults: %+v", cfg.Storage)
	}
	if cfg.AI.Provider != "agent" {
		t.Errorf("Provider = %q", cfg.AI.Provider)
	}
	if cfg.MinioEnabled() {
		t.Error("minio enabled without endpoint")
	}
}

func TestLoadOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := `
server:
  port: 9090
database:
  driver: postgres
  host: db.internal
  port: 5432
  user: app
  password: pw
  name: sermons
ai:
  provider: openai
  openaiKey: sk-test
minio:
  endpoint: minio:9000
  bucketName: artifacts
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("Port = %d", cfg.Server.Port)
	}
	if cfg.Database.Driver != "postgres" {
		t.Errorf("Driver = %q", cfg.Database.Driver)
	}
	if !cfg.MinioEnabled() {
		t.Error("minio should be enabled")
	}

	dsn := cfg.PostgresDSN()
	for _, part := range []string{"host=db.internal", "port=5432", "dbname=sermons"} {
		if !strings.Contains(dsn, part) {
			t.Errorf("PostgresDSN missing %q: %s", part, dsn)
		}
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("server: [broken"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestMySQLDSN(t *testing.T) {
	var cfg Config
	cfg.Database.User = "app"
	cfg.Database.Password = "pw"
	cfg.Database.Host = "db"
	cfg.Database.Port = 3306
	cfg.Database.Name = "sermons"

	dsn := cfg.MySQLDSN()
	if !strings.HasPrefix(dsn, "app:pw@tcp(db:3306)/sermons?") {
		t.Errorf("MySQLDSN = %s", dsn)
	}
	if !strings.Contains(dsn, "parseTime=true") {
		t.Errorf("parseTime missing: %s", dsn)
	}
}
