package config

import (
	"fmt"
	"os"
	"strconv"

	"issuepreview/internal/markdown"
)

// Config 描述预览服务运行时所需的关键配置。
type Config struct {
	BindAddr       string
	TemplateDir    string
	MarkdownEngine markdown.Engine
	// RefreshSeconds 为预览页自动刷新间隔，0 表示关闭。
	RefreshSeconds int
}

// Load 从环境变量读取配置，并提供合理的默认值。
func Load() (Config, error) {
	cfg := Config{
		BindAddr:       getEnvDefault("BIND_ADDR", ":8080"),
		TemplateDir:    getEnvDefault("TEMPLATE_DIR", ".github/ISSUE_TEMPLATE"),
		MarkdownEngine: markdown.Engine(getEnvDefault("MARKDOWN_ENGINE", string(markdown.EngineLite))),
	}

	if _, ok := markdown.New(cfg.MarkdownEngine); !ok {
		return Config{}, fmt.Errorf("MARKDOWN_ENGINE must be %q or %q, got %q",
			markdown.EngineLite, markdown.EngineGoldmark, cfg.MarkdownEngine)
	}

	refresh, err := strconv.Atoi(getEnvDefault("PREVIEW_REFRESH", "0"))
	if err != nil || refresh < 0 {
		return Config{}, fmt.Errorf("PREVIEW_REFRESH must be a non-negative integer, got %q", os.Getenv("PREVIEW_REFRESH"))
	}
	cfg.RefreshSeconds = refresh

	return cfg, nil
}

// Converter 返回配置的 markdown 转换器。
func (c Config) Converter() markdown.Converter {
	conv, ok := markdown.New(c.MarkdownEngine)
	if !ok {
		return markdown.Lite{}
	}
	return conv
}

func getEnvDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
