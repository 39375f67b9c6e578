package config

import "github.com/aws/aws-sdk-go-v2/service/s3"

type ServerConfig struct {
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	BasePath string `yaml:"base_path"`
}

type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type S3Config struct {
	Bucket   string `yaml:"bucket"`
	Client   *s3.Client
	Region   string `yaml:"region"`
	Endpoint string `yaml:"endpoint"`
	Local    bool   `yaml:"local"`
}

type JWTConfig struct {
	SecretKey       string `yaml:"secret_key"`
	AccessTokenTTL  string `yaml:"access_token_ttl"`
	RefreshTokenTTL string `yaml:"refresh_token_ttl"`
}

type WebhookConfig struct {
	URL     string `yaml:"url"`
	Timeout string `yaml:"timeout"`
}

type AdminConfig struct {
	AdminToken string `yaml:"admin_token"`
}

// QuotaConfig : лимиты хранилища, фиксированные для деплоя
// MaxUserBytes — суммарный лимит на пользователя (все документы + аватар)
// MaxDocumentBytes и MaxProfilePictureBytes — независимые потолки на один файл
type QuotaConfig struct {
	MaxUserBytes           int64 `yaml:"max_user_bytes"`
	MaxDocumentBytes       int64 `yaml:"max_document_bytes"`
	MaxProfilePictureBytes int64 `yaml:"max_profile_picture_bytes"`
}

type TTL struct {
	S3AndRedis int `yaml:"s3_and_redis"`
}
