package config

import (
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// Env holds the environment-derived settings for the optional eventbus and
// configstore features. The core engine never requires any of these; a
// config file's petri_net/controller sections are sufficient on their own.
// bnetctl run applies ConfigPath and the AMQP settings; LogLevel, CouchDSN
// and CouchDB are read but not applied by any command (config push/pull take
// their CouchDB settings from flags only).
type Env struct {
	ConfigPath string
	LogLevel   string

	AMQPURL      string
	AMQPExchange string

	CouchDSN string
	CouchDB  string
}

// LoadEnv reads a .env file if present (missing is not an error, matching
// the teacher's env loader) and layers BNETCTL_* environment variables over
// it. log receives a debug line per variable actually found, nothing for
// variables left unset.
func LoadEnv(log *zap.Logger) Env {
	if log == nil {
		log = zap.NewNop()
	}
	if err := godotenv.Load(); err != nil {
		log.Debug("no .env file loaded", zap.Error(err))
	}

	var e Env
	e.ConfigPath = lookup(log, "BNETCTL_CONFIG")
	e.LogLevel = lookup(log, "BNETCTL_LOG_LEVEL")
	e.AMQPURL = lookup(log, "BNETCTL_AMQP_URL")
	e.AMQPExchange = lookup(log, "BNETCTL_AMQP_EXCHANGE")
	e.CouchDSN = lookup(log, "BNETCTL_COUCH_DSN")
	e.CouchDB = lookup(log, "BNETCTL_COUCH_DB")
	return e
}

func lookup(log *zap.Logger, key string) string {
	v, ok := os.LookupEnv(key)
	if ok {
		log.Debug("environment variable set", zap.String("key", key))
	}
	return v
}
