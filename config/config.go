package config

import (
	"github.com/gotify/configor"
)

var Conf *Configuration

type Configuration struct {
	App struct {
		ListenAddr string `default:"" env:"APP_HOST"`
		Port       int    `default:"8080"  env:"APP_PORT"`
		PublicURL  string `default:"http://localhost:8080" env:"APP_PUBLIC_URL"` // base for decision action links
	}
	Database struct {
		Host           string `default:"127.0.0.1" env:"DB_HOST"`
		Port           string `default:"5432" env:"DB_PORT"`
		Name           string `default:"mailpilot" env:"DB_NAME"`
		User           string `default:"postgres" env:"DB_USER"`
		Password       string `default:"postgres" env:"DB_PASSWORD"`
		MigrateOnStart *bool  `default:"true" env:"DB_MIGRATE_ON_START"`
		DebugMode      *bool  `default:"false" env:"DB_DEBUG_MODE"`
	}
	Auth struct {
		JWTSecret             string `default:"change-me" env:"JWT_SECRET"`
		JWTExpireInSec        int    `default:"86400" env:"JWT_EXPIRE_IN_SEC"`
		ActionLinkExpireInSec int    `default:"259200" env:"ACTION_LINK_EXPIRE_IN_SEC"` // one-click decision links, 72h
	}
	Smtp struct {
		User       string `default:"" env:"SMTP_USER"`
		Password   string `default:"" env:"SMTP_PASSWORD"`
		Host       string `default:"" env:"SMTP_HOST"`
		Port       string `default:"" env:"SMTP_PORT"`
		TLSEnabled *bool  `default:"true" env:"SMTP_TLS_ENABLED"`
	}
	S3 struct {
		Endpoint        string `default:"" env:"S3_ENDPOINT"`
		AccessKeyID     string `default:"" env:"S3_ACCESS_KEY_ID"`
		SecretAccessKey string `default:"" env:"S3_SECRET_ACCESS_KEY"`
		UseSSL          *bool  `default:"false" env:"S3_USE_SSL"`
		BucketName      string `default:"mailpilot-drafts" env:"S3_BUCKET_NAME"`
	}
	Approval struct {
		SweepFirstRunDelayInSec int `default:"15" env:"APPROVAL_SWEEP_FIRST_RUN_DELAY_IN_SEC"`
		SweepIntervalInSec      int `default:"300" env:"APPROVAL_SWEEP_INTERVAL_IN_SEC"`
		SweepBatchSize          int `default:"100" env:"APPROVAL_SWEEP_BATCH_SIZE"`
		ConditionTimeoutInSec   int `default:"5" env:"APPROVAL_CONDITION_TIMEOUT_IN_SEC"`
		NotifyTimeoutInSec      int `default:"10" env:"APPROVAL_NOTIFY_TIMEOUT_IN_SEC"`
		LockWaitInSec           int `default:"5" env:"APPROVAL_LOCK_WAIT_IN_SEC"`
	}
}

func configFiles() []string {
	return []string{"config.yml"}
}

func InitConfig() {
	if Conf != nil {
		return
	}
	conf := new(Configuration)
	err := configor.New(&configor.Config{}).Load(conf, configFiles()...)
	if err != nil {
		panic(err)
	}
	Conf = conf
}
