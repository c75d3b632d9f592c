package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Address          string
	Port             int
	MongoURI         string
	MongoDB          string
	JWTSecret        string
	CoinGeckoBaseURL string
	PollInterval     time.Duration
	OTPTTL           time.Duration
	VonageAPIKey     string
	VonageAPISecret  string
	VonageFrom       string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	portStr := os.Getenv("PORT")
	if portStr == "" {
		portStr = "5000"
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, errors.New("invalid PORT value")
	}

	address := os.Getenv("ADDRESS")
	if address == "" {
		address = "0.0.0.0"
	}

	mongoURI := os.Getenv("MONGO_URI")
	if mongoURI == "" {
		mongoURI = "mongodb://localhost:27017"
	}

	mongoDB := os.Getenv("MONGO_DB")
	if mongoDB == "" {
		mongoDB = "cryptopulse"
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		jwtSecret = "dev-secret-change-me"
	}

	cgBase := os.Getenv("COINGECKO_BASE_URL")
	if cgBase == "" {
		cgBase = "https://api.coingecko.com/api/v3"
	}

	pollInterval, err := durationEnv("ALERT_POLL_INTERVAL", time.Minute)
	if err != nil {
		return nil, errors.New("invalid ALERT_POLL_INTERVAL value")
	}

	otpTTL, err := durationEnv("OTP_TTL", 10*time.Minute)
	if err != nil {
		return nil, errors.New("invalid OTP_TTL value")
	}

	return &Config{
		Address:          address,
		Port:             port,
		MongoURI:         mongoURI,
		MongoDB:          mongoDB,
		JWTSecret:        jwtSecret,
		CoinGeckoBaseURL: cgBase,
		PollInterval:     pollInterval,
		OTPTTL:           otpTTL,
		VonageAPIKey:     os.Getenv("VONAGE_API_KEY"),
		VonageAPISecret:  os.Getenv("VONAGE_API_SECRET"),
		VonageFrom:       envOr("VONAGE_FROM", "CryptoPulse"),
	}, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	return time.ParseDuration(v)
}
