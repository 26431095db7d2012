package config

import (
	"encoding/xml"
	"io"
	"os"
	"sync"
)

var (
	cfg  *APIConfig
	once sync.Once
)

// APIConfig represents the root element.
type APIConfig struct {
	XMLName        xml.Name             `xml:"API"`
	RequestDump    bool                 `xml:"REQUEST_DUMP,attr"`
	Context        ContextConfig        `xml:"CONTEXT"`
	Authentication AuthenticationConfig `xml:"AUTHENTICATION"`
	Pagination     PaginationConfig     `xml:"PAGINATION"`
	DB             DBConfig             `xml:"DB"`
	AI             AIConfig             `xml:"AI"`
	Assessment     AssessmentConfig     `xml:"ASSESSMENT"`
	Matching       MatchingConfig       `xml:"MATCHING"`
}

// ContextConfig holds basic server settings.
type ContextConfig struct {
	Port     int    `xml:"PORT"`
	Host     string `xml:"HOST"`
	Path     string `xml:"PATH"`
	TimeZone string `xml:"TIME_ZONE"`
	LogDir   string `xml:"LOG_DIR"`
}

// AuthenticationConfig holds authentication settings.
type AuthenticationConfig struct {
	EnableTokenAuth bool `xml:"ENABLE_TOKEN_AUTH"`
	SessionTimeout  int  `xml:"SESSION_TIMEOUT"`
}

// PaginationConfig holds pagination settings.
type PaginationConfig struct {
	PageSize int `xml:"PAGE_SIZE"`
}

// DBConfig holds database connection settings.
type DBConfig struct {
	Initialize bool         `xml:"INITIALIZE"`
	Host       string       `xml:"HOST"`
	Port       int          `xml:"PORT"`
	SSLMode    string       `xml:"SSL_MODE"`
	Name       string       `xml:"NAME"`
	Username   string       `xml:"USERNAME"`
	Password   DBPassword   `xml:"PASSWORD"`
	Pool       DBPoolConfig `xml:"POOL"`
}

// DBPassword holds password details.
type DBPassword struct {
	Type  string `xml:"TYPE,attr"`
	Value string `xml:",chardata"`
}

// DBPoolConfig holds database connection pooling settings.
type DBPoolConfig struct {
	MaxOpenConns    int `xml:"MAX_OPEN_CONNS"`
	MaxIdleConns    int `xml:"MAX_IDLE_CONNS"`
	ConnMaxLifetime int `xml:"CONN_MAX_LIFETIME"`
}

// AIConfig holds the language-model endpoint settings. TIMEOUT_SECONDS
// bounds every call; DISABLED forces all consumers onto their fallbacks.
type AIConfig struct {
	URL            string `xml:"URL"`
	Model          string `xml:"MODEL"`
	TimeoutSeconds int    `xml:"TIMEOUT_SECONDS"`
	Disabled       bool   `xml:"DISABLED"`
}

// AssessmentConfig bounds interview session parameters.
type AssessmentConfig struct {
	MinQuestions            int `xml:"MIN_QUESTIONS"`
	MaxQuestions            int `xml:"MAX_QUESTIONS"`
	DefaultQuestions        int `xml:"DEFAULT_QUESTIONS"`
	DefaultTimeLimitMinutes int `xml:"DEFAULT_TIME_LIMIT_MINUTES"`
	MaxTimeLimitMinutes     int `xml:"MAX_TIME_LIMIT_MINUTES"`
}

// MatchingConfig holds the fixed ATS scoring weights and batch limits.
// Weights must sum to 1.0.
type MatchingConfig struct {
	SkillsWeight     float64 `xml:"SKILLS_WEIGHT"`
	ExperienceWeight float64 `xml:"EXPERIENCE_WEIGHT"`
	EducationWeight  float64 `xml:"EDUCATION_WEIGHT"`
	MaxConcurrent    int     `xml:"MAX_CONCURRENT"`
	OracleRPS        float64 `xml:"ORACLE_RPS"`
}

// LoadConfig loads and parses the XML configuration from the given file.
func LoadConfig(xmlPath string) (*APIConfig, error) {
	once.Do(func() {
		f, err := os.Open(xmlPath)
		if err != nil {
			return
		}
		defer f.Close()

		data, err := io.ReadAll(f)
		if err != nil {
			return
		}

		var newCfg APIConfig
		if err := xml.Unmarshal(data, &newCfg); err != nil {
			return
		}

		newCfg.applyDefaults()
		cfg = &newCfg
	})

	if cfg == nil {
		return nil, os.ErrInvalid
	}
	return cfg, nil
}

// GetConfig returns the loaded configuration.
func GetConfig() *APIConfig {
	return cfg
}

func (c *APIConfig) applyDefaults() {
	if c.AI.Model == "" {
		c.AI.Model = "mistral"
	}
	if c.AI.TimeoutSeconds <= 0 {
		c.AI.TimeoutSeconds = 30
	}
	if c.Assessment.MinQuestions <= 0 {
		c.Assessment.MinQuestions = 5
	}
	if c.Assessment.MaxQuestions <= 0 {
		c.Assessment.MaxQuestions = 10
	}
	if c.Assessment.DefaultQuestions <= 0 {
		c.Assessment.DefaultQuestions = 5
	}
	if c.Assessment.DefaultTimeLimitMinutes <= 0 {
		c.Assessment.DefaultTimeLimitMinutes = 30
	}
	if c.Assessment.MaxTimeLimitMinutes <= 0 {
		c.Assessment.MaxTimeLimitMinutes = 180
	}
	if c.Matching.SkillsWeight+c.Matching.ExperienceWeight+c.Matching.EducationWeight == 0 {
		c.Matching.SkillsWeight = 0.5
		c.Matching.ExperienceWeight = 0.3
		c.Matching.EducationWeight = 0.2
	}
	if c.Matching.MaxConcurrent <= 0 {
		c.Matching.MaxConcurrent = 4
	}
	if c.Matching.OracleRPS <= 0 {
		c.Matching.OracleRPS = 2
	}
	if c.Pagination.PageSize <= 0 {
		c.Pagination.PageSize = 50
	}
}
