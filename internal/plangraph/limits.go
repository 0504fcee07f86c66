package plangraph

// PlatformLimit bounds the content fields a platform accepts.
type PlatformLimit struct {
	// MaxCaptionLength is the maximum caption length in characters.
	MaxCaptionLength int `json:"maxCaptionLength" yaml:"maxCaptionLength"`

	// MaxHashtags is the maximum number of hashtags per post.
	MaxHashtags int `json:"maxHashtags" yaml:"maxHashtags"`
}

// LimitTable maps platform names to their content limits. Platforms
// absent from the table carry no limits; their content validates
// unconstrained.
type LimitTable map[string]PlatformLimit

// DefaultLimits returns the built-in per-platform limit table.
func DefaultLimits() LimitTable {
	return LimitTable{
		"instagram": {MaxCaptionLength: 2200, MaxHashtags: 30},
		"tiktok":    {MaxCaptionLength: 2200, MaxHashtags: 30},
		"youtube":   {MaxCaptionLength: 5000, MaxHashtags: 15},
		"linkedin":  {MaxCaptionLength: 3000, MaxHashtags: 30},
		"x":         {MaxCaptionLength: 280, MaxHashtags: 10},
		"twitter":   {MaxCaptionLength: 280, MaxHashtags: 10},
		"facebook":  {MaxCaptionLength: 63206, MaxHashtags: 30},
	}
}

// WithOverrides returns a copy of the table with the given per-platform
// entries replacing or extending the existing ones.
func (t LimitTable) WithOverrides(overrides map[string]PlatformLimit) LimitTable {
	merged := make(LimitTable, len(t)+len(overrides))
	for platform, limit := range t {
		merged[platform] = limit
	}
	for platform, limit := range overrides {
		merged[platform] = limit
	}
	return merged
}
