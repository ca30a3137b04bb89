package projects

import (
	"net/url"
	"strings"
)

// normalize trims the optional URLs so the stored value is exactly the one
// that was validated. Whitespace-only URLs become absent.
func normalize(f Fields) Fields {
	f.GithubURL = strings.TrimSpace(f.GithubURL)
	f.DeployedURL = strings.TrimSpace(f.DeployedURL)
	return f
}

// Validate checks the required fields first, then the optional URLs.
func Validate(f Fields) error {
	var missing []string
	if strings.TrimSpace(f.Title) == "" {
		missing = append(missing, "title")
	}
	if strings.TrimSpace(f.Description) == "" {
		missing = append(missing, "description")
	}
	if len(missing) > 0 {
		return &ValidationError{Fields: missing, Reason: "required"}
	}

	f = normalize(f)
	var invalid []string
	if !validOptionalURL(f.GithubURL) {
		invalid = append(invalid, "githubUrl")
	}
	if !validOptionalURL(f.DeployedURL) {
		invalid = append(invalid, "deployedUrl")
	}
	if len(invalid) > 0 {
		return &ValidationError{Fields: invalid, Reason: "must be an absolute URL"}
	}
	return nil
}

func validOptionalURL(raw string) bool {
	if raw == "" {
		return true
	}
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return u.IsAbs() && u.Host != ""
}
