package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/curio-cli/curio/pkg/backends"
	"github.com/curio-cli/curio/pkg/files"
	"github.com/curio-cli/curio/pkg/policy"
	"github.com/curio-cli/curio/pkg/search"
	"github.com/curio-cli/curio/pkg/sync"
)

// Environment variables that wire the remote and registry backends.
const (
	EnvRemoteRepo  = "CURIO_REMOTE"       // owner/repo or owner/repo@branch
	EnvGitHubToken = "CURIO_GITHUB_TOKEN" // token for remote repository calls
	EnvRegistryURL = "CURIO_REGISTRY_URL" // base URL of the community registry
)

// DefaultRegistryURL is used when CURIO_REGISTRY_URL is unset.
const DefaultRegistryURL = "https://registry.curio-cli.dev"

// ValidatePortfolio ensures the current directory holds an initialized
// portfolio before a command touches the element store.
func ValidatePortfolio() error {
	if !files.PortfolioExists() {
		return fmt.Errorf("no %s directory found. Run 'curio init' first", files.CurioDir)
	}
	return nil
}

// Toolkit bundles the resolver, coordinator, and sync engine a command needs,
// built once from the environment.
type Toolkit struct {
	Resolver    *policy.Resolver
	Coordinator *search.Coordinator
	Engine      *sync.Engine

	Local  *backends.Local
	Remote *backends.Remote
}

// NewToolkit wires backends from the environment. The local store is always
// present; remote and registry join when configured. Commands that need the
// remote should call RequireRemote first.
func NewToolkit() *Toolkit {
	local := backends.NewLocal()
	list := []backends.Backend{local}

	var remote *backends.Remote
	if owner, repo, branch, ok := remoteRepoFromEnv(); ok {
		remote = backends.NewRemote(owner, repo, branch, tokenFromEnv)
		list = append(list, remote)
	}

	registryURL := os.Getenv(EnvRegistryURL)
	if registryURL == "" {
		registryURL = DefaultRegistryURL
	}
	list = append(list, backends.NewRegistry(registryURL))

	resolver := policy.New()
	resolver.Warn = PrintWarning

	coordinator := search.NewCoordinator(list, resolver, nil)
	coordinator.Warn = PrintWarning

	tk := &Toolkit{
		Resolver:    resolver,
		Coordinator: coordinator,
		Local:       local,
		Remote:      remote,
	}

	if remote != nil {
		tk.Engine = &sync.Engine{
			Local:      local,
			Remote:     remote,
			Invalidate: coordinator.Invalidate,
			Confirm: func(prompt string) bool {
				ok, err := Confirm(prompt, false)
				return err == nil && ok
			},
			Warn: PrintWarning,
		}
	}

	return tk
}

// RequireRemote fails with setup guidance when no remote repository is
// configured.
func (t *Toolkit) RequireRemote() error {
	if t.Remote == nil {
		return fmt.Errorf("no remote repository configured. Set %s to owner/repo (and %s for private repos)", EnvRemoteRepo, EnvGitHubToken)
	}
	return nil
}

func remoteRepoFromEnv() (owner, repo, branch string, ok bool) {
	ref := os.Getenv(EnvRemoteRepo)
	if ref == "" {
		return "", "", "", false
	}
	if at := strings.IndexByte(ref, '@'); at >= 0 {
		branch = ref[at+1:]
		ref = ref[:at]
	}
	parts := strings.SplitN(ref, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		PrintWarning("ignoring malformed %s=%q, expected owner/repo", EnvRemoteRepo, ref)
		return "", "", "", false
	}
	return parts[0], parts[1], branch, true
}

func tokenFromEnv(ctx context.Context) (string, error) {
	token := os.Getenv(EnvGitHubToken)
	if token == "" {
		return "", fmt.Errorf("%s is not set", EnvGitHubToken)
	}
	return token, nil
}
