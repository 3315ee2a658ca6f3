// Package panel holds the admin panel's client-side state: the product
// add/edit workflow and the paginated newsletter table. It is a library
// embedded by a panel front end and talks to the API server over HTTP;
// the server itself never constructs a Panel.
package panel

import (
	"net/url"

	"github.com/GTDGit/gtd_shop/internal/catalog"
	"github.com/GTDGit/gtd_shop/internal/config"
	"github.com/GTDGit/gtd_shop/pkg/adminapi"
)

// Panel bundles the API client with the views that use it.
type Panel struct {
	API        *adminapi.Client
	Products   *Workflow
	Newsletter *NewsletterList
}

// FromEnv builds a Panel from the PANEL_* environment settings.
func FromEnv(taxonomy *catalog.Taxonomy, notifier Notifier) (*Panel, error) {
	cfg, err := config.LoadPanel()
	if err != nil {
		return nil, &ConfigurationError{Setting: "PANEL_SEARCH_DEBOUNCE", Message: err.Error()}
	}
	return New(cfg, taxonomy, notifier)
}

// New builds a Panel from cfg. It returns a ConfigurationError when the API
// base URL is unusable.
func New(cfg config.PanelConfig, taxonomy *catalog.Taxonomy, notifier Notifier) (*Panel, error) {
	u, err := url.Parse(cfg.APIBaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, &ConfigurationError{Setting: "PANEL_API_BASE_URL", Message: "must be an absolute http(s) URL"}
	}

	client := adminapi.NewClient(cfg.APIBaseURL)
	return &Panel{
		API:        client,
		Products:   NewWorkflow(client, taxonomy, notifier, cfg.MediaFolder),
		Newsletter: NewNewsletterList(client, notifier, cfg.ItemsPerPage, cfg.SearchDebounce),
	}, nil
}

// Close releases background resources.
func (p *Panel) Close() {
	p.Newsletter.Close()
}
