package backends

import (
	"context"
	"fmt"
	"net/http"
	"path"
	"strings"

	gogithub "github.com/google/go-github/v67/github"

	"github.com/curio-cli/curio/pkg/files"
	"github.com/curio-cli/curio/pkg/models"
)

// Remote indexes the user's authenticated portfolio repository through the
// GitHub contents API. Elements live under elements/<type>/<name>.md on the
// configured branch, mirroring the local store layout. Rate-limit backoff is
// the SDK's responsibility.
type Remote struct {
	owner       string
	repo        string
	branch      string
	credentials CredentialProvider

	// newClient builds the SDK client for a token. Tests replace it.
	newClient func(token string) *gogithub.Client
}

// NewRemote returns the remote repository backend. The branch defaults to
// "main" when empty.
func NewRemote(owner, repo, branch string, credentials CredentialProvider) *Remote {
	if branch == "" {
		branch = "main"
	}
	return &Remote{
		owner:       owner,
		repo:        repo,
		branch:      branch,
		credentials: credentials,
		newClient: func(token string) *gogithub.Client {
			return gogithub.NewClient(nil).WithAuthToken(token)
		},
	}
}

func (r *Remote) Source() models.Source {
	return models.SourceRemote
}

func (r *Remote) client(ctx context.Context) (*gogithub.Client, error) {
	if r.credentials == nil {
		return nil, unavailable(models.SourceRemote, fmt.Errorf("no credentials configured"))
	}
	token, err := r.credentials(ctx)
	if err != nil {
		return nil, unavailable(models.SourceRemote, fmt.Errorf("credential provider: %w", err))
	}
	return r.newClient(token), nil
}

// List walks elements/<type>/ directories in the repository and parses each
// file's frontmatter into an index entry.
func (r *Remote) List(ctx context.Context, elementType string) ([]models.IndexEntry, error) {
	client, err := r.client(ctx)
	if err != nil {
		return nil, err
	}

	types := []string{elementType}
	if elementType == "" {
		types, err = r.listTypes(ctx, client)
		if err != nil {
			return nil, err
		}
	}

	var entries []models.IndexEntry
	for _, t := range types {
		dir := path.Join(files.ElementsDir, t)
		_, contents, resp, err := client.Repositories.GetContents(ctx, r.owner, r.repo, dir,
			&gogithub.RepositoryContentGetOptions{Ref: r.branch})
		if err != nil {
			if resp != nil && resp.StatusCode == http.StatusNotFound {
				continue
			}
			return nil, unavailable(models.SourceRemote, err)
		}

		for _, item := range contents {
			if item.GetType() != "file" || !strings.HasSuffix(item.GetName(), ".md") {
				continue
			}
			key := models.NewElementKey(t, strings.TrimSuffix(item.GetName(), ".md"))
			entry, err := r.fetchEntry(ctx, client, key, item.GetPath())
			if err != nil {
				continue
			}
			entries = append(entries, entry)
		}
	}

	return entries, nil
}

func (r *Remote) listTypes(ctx context.Context, client *gogithub.Client) ([]string, error) {
	_, contents, resp, err := client.Repositories.GetContents(ctx, r.owner, r.repo, files.ElementsDir,
		&gogithub.RepositoryContentGetOptions{Ref: r.branch})
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return nil, nil
		}
		return nil, unavailable(models.SourceRemote, err)
	}

	var types []string
	for _, item := range contents {
		if item.GetType() == "dir" {
			types = append(types, item.GetName())
		}
	}
	return types, nil
}

func (r *Remote) fetchEntry(ctx context.Context, client *gogithub.Client, key models.ElementKey, repoPath string) (models.IndexEntry, error) {
	raw, err := r.fileContent(ctx, client, key, repoPath)
	if err != nil {
		return models.IndexEntry{}, err
	}

	el, err := files.ParseElementText(raw)
	if err != nil {
		return models.IndexEntry{}, err
	}

	entry := el.IndexEntry
	if entry.Name == "" {
		entry.Name = key.Name
	}
	entry.Name = models.NormalizeName(entry.Name)
	entry.Type = key.Type
	entry.Path = repoPath
	return entry, nil
}

func (r *Remote) Fetch(ctx context.Context, key models.ElementKey) (string, error) {
	client, err := r.client(ctx)
	if err != nil {
		return "", err
	}
	return r.fileContent(ctx, client, key, r.repoPath(key))
}

func (r *Remote) fileContent(ctx context.Context, client *gogithub.Client, key models.ElementKey, repoPath string) (string, error) {
	file, _, resp, err := client.Repositories.GetContents(ctx, r.owner, r.repo, repoPath,
		&gogithub.RepositoryContentGetOptions{Ref: r.branch})
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return "", &NotFoundError{Backend: models.SourceRemote, Key: key}
		}
		return "", unavailable(models.SourceRemote, err)
	}
	if file == nil {
		return "", unavailable(models.SourceRemote, fmt.Errorf("%s is not a file", repoPath))
	}

	raw, err := file.GetContent()
	if err != nil {
		return "", unavailable(models.SourceRemote, err)
	}
	return raw, nil
}

// Write creates or updates one element file and returns the commit SHA.
func (r *Remote) Write(ctx context.Context, key models.ElementKey, content string) (string, error) {
	client, err := r.client(ctx)
	if err != nil {
		return "", err
	}

	repoPath := r.repoPath(key)
	opts := &gogithub.RepositoryContentFileOptions{
		Message: gogithub.String(fmt.Sprintf("Sync element %s", key)),
		Content: []byte(content),
		Branch:  gogithub.String(r.branch),
	}

	// An existing file needs its blob SHA for the update call.
	if sha, ok := r.blobSHA(ctx, client, repoPath); ok {
		opts.SHA = gogithub.String(sha)
	}

	result, _, err := client.Repositories.CreateFile(ctx, r.owner, r.repo, repoPath, opts)
	if err != nil {
		return "", unavailable(models.SourceRemote, err)
	}
	return result.Commit.GetSHA(), nil
}

// Delete removes one element file from the repository.
func (r *Remote) Delete(ctx context.Context, key models.ElementKey) error {
	client, err := r.client(ctx)
	if err != nil {
		return err
	}

	repoPath := r.repoPath(key)
	sha, ok := r.blobSHA(ctx, client, repoPath)
	if !ok {
		return &NotFoundError{Backend: models.SourceRemote, Key: key}
	}

	opts := &gogithub.RepositoryContentFileOptions{
		Message: gogithub.String(fmt.Sprintf("Remove element %s", key)),
		SHA:     gogithub.String(sha),
		Branch:  gogithub.String(r.branch),
	}
	if _, _, err := client.Repositories.DeleteFile(ctx, r.owner, r.repo, repoPath, opts); err != nil {
		return unavailable(models.SourceRemote, err)
	}
	return nil
}

func (r *Remote) blobSHA(ctx context.Context, client *gogithub.Client, repoPath string) (string, bool) {
	file, _, _, err := client.Repositories.GetContents(ctx, r.owner, r.repo, repoPath,
		&gogithub.RepositoryContentGetOptions{Ref: r.branch})
	if err != nil || file == nil {
		return "", false
	}
	return file.GetSHA(), true
}

func (r *Remote) repoPath(key models.ElementKey) string {
	return path.Join(files.ElementsDir, key.Type, key.Name+".md")
}
