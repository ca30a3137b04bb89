// Package projects manages the portfolio's project records, persisted as a
// single JSON array document in a blob store.
package projects

// Project is a portfolio entry.
type Project struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Image       string `json:"image,omitempty"`
	GithubURL   string `json:"githubUrl,omitempty"`
	DeployedURL string `json:"deployedUrl,omitempty"`
	Type        string `json:"type,omitempty"`
	TechStack   string `json:"techStack,omitempty"`
}

// Fields holds the caller-supplied part of a Project.
type Fields struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Image       string `json:"image,omitempty"`
	GithubURL   string `json:"githubUrl,omitempty"`
	DeployedURL string `json:"deployedUrl,omitempty"`
	Type        string `json:"type,omitempty"`
	TechStack   string `json:"techStack,omitempty"`
}

func (f Fields) withID(id string) Project {
	return Project{
		ID:          id,
		Title:       f.Title,
		Description: f.Description,
		Image:       f.Image,
		GithubURL:   f.GithubURL,
		DeployedURL: f.DeployedURL,
		Type:        f.Type,
		TechStack:   f.TechStack,
	}
}

// Fields returns p without its id.
func (p Project) Fields() Fields {
	return Fields{
		Title:       p.Title,
		Description: p.Description,
		Image:       p.Image,
		GithubURL:   p.GithubURL,
		DeployedURL: p.DeployedURL,
		Type:        p.Type,
		TechStack:   p.TechStack,
	}
}
