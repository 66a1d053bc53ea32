package content

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

var ErrEntryNotFound = errors.New("template not found")

var templateExts = []string{".yml", ".yaml"}

// config.yml 是模板选择器的配置，不是模板。
const configSlug = "config"

// Entry 表示目录中的一个 issue 模板源文件。
type Entry struct {
	Slug       string
	Path       string
	Raw        string
	ModifiedAt time.Time
}

// Store 以只读方式访问一个 issue 模板目录。每次调用都重新读取磁盘，
// 因此编辑后的文件会立即反映在预览中。
type Store struct {
	root string
}

// NewStore 创建一个指向指定目录的 Store，目录必须已存在。
func NewStore(root string) (*Store, error) {
	if root == "" {
		return nil, errors.New("template root cannot be empty")
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("stat template dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("template root %s is not a directory", root)
	}
	return &Store{root: root}, nil
}

// Root 返回模板目录。
func (s *Store) Root() string {
	return s.root
}

// Get 读取指定 slug 的模板。
func (s *Store) Get(slugID string) (Entry, error) {
	if !validSlug(slugID) || slugID == configSlug {
		return Entry{}, ErrEntryNotFound
	}
	for _, ext := range templateExts {
		entry, err := s.read(slugID, filepath.Join(s.root, slugID+ext))
		if errors.Is(err, ErrEntryNotFound) {
			continue
		}
		return entry, err
	}
	return Entry{}, ErrEntryNotFound
}

// List 返回目录中的所有模板，按 slug 排序。
func (s *Store) List() ([]Entry, error) {
	files, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fmt.Errorf("read template dir: %w", err)
	}

	entries := make([]Entry, 0, len(files))
	for _, f := range files {
		if f.IsDir() {
			continue
		}
		slugID, ok := slugFromName(f.Name())
		if !ok || slugID == configSlug {
			continue
		}
		entry, err := s.read(slugID, filepath.Join(s.root, f.Name()))
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Slug < entries[j].Slug
	})

	return entries, nil
}

func (s *Store) read(slugID, path string) (Entry, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Entry{}, ErrEntryNotFound
		}
		return Entry{}, fmt.Errorf("stat template: %w", err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return Entry{}, fmt.Errorf("read template: %w", err)
	}
	return Entry{
		Slug:       slugID,
		Path:       path,
		Raw:        string(raw),
		ModifiedAt: info.ModTime().UTC(),
	}, nil
}

func slugFromName(name string) (string, bool) {
	ext := filepath.Ext(name)
	for _, want := range templateExts {
		if strings.EqualFold(ext, want) {
			return strings.TrimSuffix(name, ext), true
		}
	}
	return "", false
}

func validSlug(slugID string) bool {
	if slugID == "" || strings.HasPrefix(slugID, ".") {
		return false
	}
	return !strings.ContainsAny(slugID, `/\`) && !strings.Contains(slugID, "..")
}
