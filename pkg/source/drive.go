package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"

	"github.com/tovenaar/docsum/models"
	"github.com/tovenaar/docsum/pkg/artifacts"
)

const (
	mimeGoogleDoc    = "application/vnd.google-apps.document"
	mimeGoogleSheet  = "application/vnd.google-apps.spreadsheet"
	googleAppsPrefix = "application/vnd.google-apps."

	driveListFields = "nextPageToken, files(id, name, mimeType, size, md5Checksum)"
	driveFileFields = "id, name, mimeType, size, md5Checksum"
)

// exportTargets maps Google-native document types to a text export.
var exportTargets = map[string]struct{ mime, ext string }{
	mimeGoogleDoc:   {"text/plain", ".txt"},
	mimeGoogleSheet: {"text/csv", ".csv"},
}

// extByMime names an extension for Drive files whose name carries none.
var extByMime = map[string]string{
	"application/pdf": ".pdf",
	"text/plain":      ".txt",
	"text/csv":        ".csv",
	"text/html":       ".html",
	"application/rtf": ".rtf",
	"application/msword":       ".doc",
	"application/vnd.ms-excel": ".xls",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": ".docx",
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":       ".xlsx",
}

// DriveSource lists and downloads files from Google Drive. With an API
// key it talks to the Drive v3 API and can enumerate whole folders;
// without one it falls back to the public download endpoint, which
// needs explicit file IDs. Downloads go through the artifact cache
// when one is attached.
type DriveSource struct {
	APIKey string
	Folder string   // folder ID or drive.google.com URL
	Files  []string // explicit file IDs or URLs
	Cache  *artifacts.Manager

	endpoint   string // alternate API endpoint for tests
	publicBase string // alternate public download base for tests
}

func (s *DriveSource) List(ctx context.Context) ([]models.Document, error) {
	if s.APIKey == "" {
		return s.listPublic(ctx)
	}
	return s.listAPI(ctx)
}

func (s *DriveSource) listAPI(ctx context.Context) ([]models.Document, error) {
	opts := []option.ClientOption{option.WithAPIKey(s.APIKey)}
	if s.endpoint != "" {
		opts = append(opts, option.WithEndpoint(s.endpoint))
	}
	svc, err := drive.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create drive client: %w", err)
	}

	var files []*drive.File
	if len(s.Files) > 0 {
		files, err = s.lookupFiles(ctx, svc)
	} else {
		files, err = s.listFolder(ctx, svc)
	}
	if err != nil {
		return nil, err
	}

	var docs []models.Document
	for _, f := range files {
		doc, skip, err := s.fetchFile(ctx, svc, f)
		if err != nil {
			return docs, err
		}
		if skip {
			continue
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func (s *DriveSource) lookupFiles(ctx context.Context, svc *drive.Service) ([]*drive.File, error) {
	var files []*drive.File
	for _, raw := range s.Files {
		id, err := ExtractDriveID(raw)
		if err != nil {
			return files, err
		}
		f, err := svc.Files.Get(id).Fields(driveFileFields).Context(ctx).Do()
		if err != nil {
			return files, fmt.Errorf("failed to look up drive file %s: %w", id, err)
		}
		files = append(files, f)
	}
	return files, nil
}

func (s *DriveSource) listFolder(ctx context.Context, svc *drive.Service) ([]*drive.File, error) {
	folderID, err := ExtractDriveID(s.Folder)
	if err != nil {
		return nil, err
	}

	var files []*drive.File
	query := fmt.Sprintf("'%s' in parents and trashed=false", folderID)
	pageToken := ""
	for {
		call := svc.Files.List().
			Q(query).
			PageSize(100).
			Fields(driveListFields).
			Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}
		res, err := call.Do()
		if err != nil {
			return files, fmt.Errorf("failed to list drive folder: %w", err)
		}
		files = append(files, res.Files...)
		pageToken = res.NextPageToken
		if pageToken == "" {
			break
		}
	}
	return files, nil
}

// fetchFile downloads one listed file, via the cache when possible.
// Google-native types outside the export map are skipped, not failed.
func (s *DriveSource) fetchFile(ctx context.Context, svc *drive.Service, f *drive.File) (models.Document, bool, error) {
	if target, ok := exportTargets[f.MimeType]; ok {
		name := f.Name + target.ext
		data, found, err := s.cacheGet(f.Id, name, "")
		if err != nil {
			slog.Warn("download cache unreadable", "file", name, "error", err)
		}
		if !found {
			data, err = s.export(ctx, svc, f.Id, target.mime)
			if err != nil {
				return models.Document{}, false, fmt.Errorf("failed to export %s: %w", f.Name, err)
			}
			s.cachePut(f.Id, name, data)
		}
		return models.Document{
			Name:    name,
			Type:    target.ext,
			Content: data,
			Size:    int64(len(data)),
			Origin:  models.OriginDrive,
			DriveID: f.Id,
		}, false, nil
	}

	if strings.HasPrefix(f.MimeType, googleAppsPrefix) {
		slog.Warn("skipping unsupported google-apps file", "file", f.Name, "mimeType", f.MimeType)
		return models.Document{}, true, nil
	}

	data, found, err := s.cacheGet(f.Id, f.Name, f.Md5Checksum)
	if err != nil {
		slog.Warn("download cache unreadable", "file", f.Name, "error", err)
	}
	if !found {
		data, err = s.download(ctx, svc, f.Id)
		if err != nil {
			return models.Document{}, false, fmt.Errorf("failed to download %s: %w", f.Name, err)
		}
		s.cachePut(f.Id, f.Name, data)
	}

	doc := models.Document{
		Name:    f.Name,
		Content: data,
		Size:    int64(len(data)),
		Origin:  models.OriginDrive,
		DriveID: f.Id,
	}
	if filepath.Ext(f.Name) == "" {
		doc.Type = extByMime[f.MimeType]
	}
	return doc, false, nil
}

func (s *DriveSource) export(ctx context.Context, svc *drive.Service, fileID, mimeType string) ([]byte, error) {
	resp, err := svc.Files.Export(fileID, mimeType).Context(ctx).Download()
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}

func (s *DriveSource) download(ctx context.Context, svc *drive.Service, fileID string) ([]byte, error) {
	resp, err := svc.Files.Get(fileID).Context(ctx).Download()
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}

func (s *DriveSource) listPublic(ctx context.Context) ([]models.Document, error) {
	if len(s.Files) == 0 {
		return nil, errors.New("public drive access needs explicit file IDs; set an API key to list folders")
	}

	dl := newPublicDownloader(s.publicBase)
	var docs []models.Document
	for _, raw := range s.Files {
		id, err := ExtractDriveID(raw)
		if err != nil {
			return docs, err
		}

		// The cache is keyed by file ID but stores the served filename,
		// so a hit keeps the extension for strategy selection.
		name, data, found, err := s.cacheFind(id)
		if err != nil {
			slog.Warn("download cache unreadable", "file_id", id, "error", err)
		}
		if !found {
			name, data, err = dl.Download(ctx, id)
			if err != nil {
				return docs, fmt.Errorf("failed to download public file %s: %w", id, err)
			}
			if name == "" {
				name = publicName(id)
			}
			s.cachePut(id, name, data)
		}

		docs = append(docs, models.Document{
			Name:    name,
			Content: data,
			Size:    int64(len(data)),
			Origin:  models.OriginDrive,
			DriveID: id,
		})
	}
	return docs, nil
}

// publicName is the fallback name for files fetched without metadata,
// a stable prefix of the file ID.
func publicName(id string) string {
	if len(id) > 8 {
		id = id[:8]
	}
	return "file_" + id
}

func (s *DriveSource) cacheGet(fileID, name, md5sum string) ([]byte, bool, error) {
	if s.Cache == nil {
		return nil, false, nil
	}
	return s.Cache.GetDownload(fileID, name, md5sum)
}

func (s *DriveSource) cacheFind(fileID string) (string, []byte, bool, error) {
	if s.Cache == nil {
		return "", nil, false, nil
	}
	return s.Cache.FindDownload(fileID)
}

func (s *DriveSource) cachePut(fileID, name string, data []byte) {
	if s.Cache == nil {
		return
	}
	if err := s.Cache.SetDownload(fileID, name, data); err != nil {
		slog.Warn("failed to cache download", "file", name, "error", err)
	}
}
