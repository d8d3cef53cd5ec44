package config

import "time"

// LimitsConfig bounds generation requests.
type LimitsConfig struct {
	// DailyLimit is the number of completed decks a user may produce per UTC day. 0 disables it.
	DailyLimit        int `env:"MAX_PRESENTATIONS_PER_DAY" envDefault:"5"`
	MinTopicLength    int `env:"MIN_TOPIC_LENGTH"          envDefault:"10"`
	MinSlideCount     int `env:"MIN_SLIDE_COUNT"           envDefault:"3"`
	MaxSlideCount     int `env:"MAX_SLIDE_COUNT"           envDefault:"20"`
	DefaultSlideCount int `env:"DEFAULT_SLIDE_COUNT"       envDefault:"10"`
}

// Sanitize keeps the slide bounds ordered and the default inside them.
func (c *LimitsConfig) Sanitize() {
	if c.DailyLimit < 0 {
		c.DailyLimit = 0
	}
	if c.MinTopicLength < 1 {
		c.MinTopicLength = 1
	}
	if c.MinSlideCount < 3 {
		c.MinSlideCount = 3
	}
	if c.MaxSlideCount < c.MinSlideCount {
		c.MaxSlideCount = c.MinSlideCount
	}
	c.DefaultSlideCount = min(max(c.DefaultSlideCount, c.MinSlideCount), c.MaxSlideCount)
}

// RetentionConfig sets how long job keys live in Redis.
type RetentionConfig struct {
	StatusTTL time.Duration `env:"JOB_STATUS_TTL" envDefault:"1h"`
	URLTTL    time.Duration `env:"JOB_URL_TTL"    envDefault:"168h"`
}

// Sanitize restores defaults for non-positive windows.
func (c *RetentionConfig) Sanitize() {
	if c.StatusTTL <= 0 {
		c.StatusTTL = time.Hour
	}
	if c.URLTTL <= 0 {
		c.URLTTL = 7 * 24 * time.Hour
	}
}

// AssemblyConfig holds the automatic section divider thresholds.
type AssemblyConfig struct {
	SectionInterval  int `env:"DECK_SECTION_INTERVAL"   envDefault:"5"`
	MaxSections      int `env:"DECK_MAX_SECTIONS"       envDefault:"2"`
	SectionMinSlides int `env:"DECK_SECTION_MIN_SLIDES" envDefault:"10"`
}

// Sanitize restores defaults for non-positive thresholds.
func (c *AssemblyConfig) Sanitize() {
	if c.SectionInterval <= 0 {
		c.SectionInterval = 5
	}
	if c.MaxSections <= 0 {
		c.MaxSections = 2
	}
	if c.SectionMinSlides <= 0 {
		c.SectionMinSlides = 10
	}
}
