package main

import (
	"context"
	"encoding/json"

	"log/slog"

	"fieldpal/internal/content"
)

// seedContent populates the in-memory store with default page content
// for local development, so the public pages render something real
// without a storage backend.
func seedContent(ctx context.Context, store *content.Store, logger *slog.Logger) {
	pages := map[string]map[string]any{
		"home": {
			"title":    "Voice-first AI for Frontline Workers",
			"subtitle": "Real work. Real time. Real AI.",
			"content":  "Capture, find and fix in minutes.",
			"stats": []map[string]string{
				{"number": "40%", "label": "Downtime cut"},
				{"number": "60%", "label": "Faster access"},
				{"number": "80%", "label": "Training speed"},
				{"number": "3-4", "label": "Months to ROI"},
			},
			"what-we-do": map[string]any{
				"heading": "Harness the power of AI for frontline operations.",
				"list_items": []string{
					"Voice-first data capture and analysis",
					"Legacy system integration and unified intelligence",
					"Predictive equipment maintenance and safety",
					"Real-time dashboards and decision support",
					"Enterprise-grade security and compliance",
				},
			},
		},
		"about": {
			"title":   "About FieldPal",
			"content": "FieldPal converts complex operational documentation into searchable, bite-sized knowledge for frontline and field workers.",
			"mission": "Reduce asset downtime, capture tribal expertise and surface the right information at the right time.",
		},
		"contact": {
			"title":   "Get in Touch",
			"content": "Tell us about your operations and we'll show you what FieldPal can do.",
		},
	}

	for page, sections := range pages {
		doc := content.Document{}
		for key, value := range sections {
			raw, err := json.Marshal(value)
			if err != nil {
				logger.Warn("skip seed section", "page", page, "section", key, "error", err)
				continue
			}
			doc[key] = raw
		}
		if err := store.Save(ctx, page, doc); err != nil {
			logger.Warn("seed page content failed", "page", page, "error", err)
		}
	}

	logger.Info("seeded default page content", "pages", len(pages))
}
