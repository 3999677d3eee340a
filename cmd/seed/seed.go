package main

import (
	"context"
	"crypto/md5"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/leonberkemeier/Receiptly/internal/dto"
	"github.com/leonberkemeier/Receiptly/internal/models"
	"github.com/leonberkemeier/Receiptly/internal/ocr"
	"github.com/leonberkemeier/Receiptly/internal/service"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ProcessedFile is a seeded fixture recorded in the cache.
type ProcessedFile struct {
	FilePath    string    `json:"file_path"`
	FileHash    string    `json:"file_hash"`
	ReceiptID   string    `json:"receipt_id"`
	ProcessedAt time.Time `json:"processed_at"`
}

// CacheData is keyed by user email, then by fixture path.
type CacheData struct {
	ProcessedFiles map[string]map[string]ProcessedFile `json:"processed_files"`
}

type seeder struct {
	auth     *service.AuthService
	receipts *service.ReceiptService
	analyzer *service.AnalyzeService
	logger   *zap.Logger
	now      func() time.Time
}

type seedStats struct {
	Created int
	Skipped int
	Failed  int
}

// demoUser registers the account, or logs into it when it already exists.
func (s *seeder) demoUser(ctx context.Context, name, email, password string) (models.User, error) {
	resp, err := s.auth.Register(ctx, &dto.RegisterRequest{Name: name, Email: email, Password: password})
	if errors.Is(err, service.ErrUserExists) {
		resp, err = s.auth.Login(ctx, &dto.LoginRequest{Email: email, Password: password})
	}
	if err != nil {
		return models.User{}, fmt.Errorf("failed to prepare demo user %s: %w", email, err)
	}

	id, err := uuid.Parse(resp.User.ID)
	if err != nil {
		return models.User{}, fmt.Errorf("invalid user id %q: %w", resp.User.ID, err)
	}
	return models.User{ID: id, Name: resp.User.Name, Email: resp.User.Email}, nil
}

// seedReceipts creates one receipt per fixture in dir. JSON files hold a
// receipt body as accepted by the API; images and PDFs go through the
// analyzer when it is configured. Unchanged fixtures are skipped.
func (s *seeder) seedReceipts(ctx context.Context, user models.User, dir string, cache *CacheData) (seedStats, error) {
	var stats seedStats

	entries, err := os.ReadDir(dir)
	if err != nil {
		return stats, fmt.Errorf("failed to read seed directory: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() && !strings.HasPrefix(entry.Name(), ".") {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	seen := cache.forUser(user.Email)
	for _, name := range names {
		path := filepath.Join(dir, name)
		if !isJSON(name) && !ocr.Supported(name) {
			continue
		}

		fileHash, err := calculateFileHash(path)
		if err != nil {
			s.logger.Warn("Failed to calculate file hash, will process anyway", zap.String("path", path), zap.Error(err))
		}
		if cached, ok := seen[path]; ok && fileHash != "" && cached.FileHash == fileHash {
			s.logger.Info("Fixture already seeded, skipping",
				zap.String("path", path),
				zap.Time("processed_at", cached.ProcessedAt),
			)
			stats.Skipped++
			continue
		}

		req, err := s.load(ctx, user, path)
		if err != nil {
			s.logger.Warn("Failed to load fixture", zap.String("path", path), zap.Error(err))
			stats.Failed++
			continue
		}

		receipt, err := s.receipts.Create(ctx, user, req)
		if err != nil {
			s.logger.Error("Failed to create receipt", zap.String("path", path), zap.Error(err))
			stats.Failed++
			continue
		}

		s.logger.Info("Seeded receipt",
			zap.String("path", path),
			zap.String("receipt_id", receipt.ID),
			zap.String("total", receipt.Total),
			zap.Int("items", len(receipt.Items)),
		)
		seen[path] = ProcessedFile{
			FilePath:    path,
			FileHash:    fileHash,
			ReceiptID:   receipt.ID,
			ProcessedAt: s.now(),
		}
		stats.Created++
	}
	return stats, nil
}

func (s *seeder) load(ctx context.Context, user models.User, path string) (*dto.ReceiptCreateRequest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixture: %w", err)
	}

	if isJSON(path) {
		var req dto.ReceiptCreateRequest
		if err := json.Unmarshal(data, &req); err != nil {
			return nil, fmt.Errorf("failed to parse fixture: %w", err)
		}
		return &req, nil
	}

	if !s.analyzer.Enabled() {
		return nil, service.ErrAnalyzerDisabled
	}
	resp, err := s.analyzer.Analyze(ctx, user, data, filepath.Base(path))
	if err != nil {
		return nil, err
	}
	return draftToRequest(resp.Data), nil
}

func draftToRequest(draft dto.ReceiptDraft) *dto.ReceiptCreateRequest {
	req := &dto.ReceiptCreateRequest{
		Date:  draft.Date,
		Time:  draft.Time,
		Total: draft.Total,
		Items: draft.Items,
	}
	if draft.Store != "" {
		req.Store = &draft.Store
	}
	if draft.Address != "" {
		req.Address = &draft.Address
	}
	return req
}

func isJSON(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".json")
}

func (c *CacheData) forUser(email string) map[string]ProcessedFile {
	if c.ProcessedFiles == nil {
		c.ProcessedFiles = make(map[string]map[string]ProcessedFile)
	}
	files, ok := c.ProcessedFiles[email]
	if !ok {
		files = make(map[string]ProcessedFile)
		c.ProcessedFiles[email] = files
	}
	return files
}

func loadCache(cacheFile string) (*CacheData, error) {
	cache := &CacheData{ProcessedFiles: make(map[string]map[string]ProcessedFile)}

	data, err := os.ReadFile(cacheFile)
	if errors.Is(err, os.ErrNotExist) {
		return cache, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cache file: %w", err)
	}
	if len(data) == 0 {
		return cache, nil
	}

	if err := json.Unmarshal(data, cache); err != nil {
		return nil, fmt.Errorf("failed to parse cache file: %w", err)
	}
	return cache, nil
}

func saveCache(cacheFile string, cache *CacheData) error {
	data, err := json.MarshalIndent(cache, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal cache: %w", err)
	}
	if err := os.WriteFile(cacheFile, data, 0o644); err != nil {
		return fmt.Errorf("failed to write cache file: %w", err)
	}
	return nil
}

func calculateFileHash(filePath string) (string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	hash := md5.New()
	if _, err := io.Copy(hash, file); err != nil {
		return "", fmt.Errorf("failed to calculate hash: %w", err)
	}
	return fmt.Sprintf("%x", hash.Sum(nil)), nil
}
