package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
	"gorm.io/gorm"

	"github.com/yungbote/outloud-backend/internal/app"
	"github.com/yungbote/outloud-backend/internal/domain"
	"github.com/yungbote/outloud-backend/internal/pkg/dbctx"
)

type seedTopic struct {
	Title        string `yaml:"title"`
	Description  string `yaml:"description"`
	Persona      string `yaml:"persona"`
	MaterialText string `yaml:"material_text"`
}

type seedFile struct {
	Topics []seedTopic `yaml:"topics"`
}

func main() {
	var path string
	flag.StringVar(&path, "file", "seed/topics.yaml", "path to the topic seed file")
	flag.Parse()

	raw, err := os.ReadFile(path)
	if err != nil {
		fmt.Printf("read seed file: %v\n", err)
		os.Exit(1)
	}

	var seed seedFile
	if err := yaml.Unmarshal(raw, &seed); err != nil {
		fmt.Printf("parse seed file: %v\n", err)
		os.Exit(1)
	}
	if len(seed.Topics) == 0 {
		fmt.Println("no topics in seed file")
		return
	}

	application, err := app.New()
	if err != nil {
		fmt.Printf("init app: %v\n", err)
		os.Exit(1)
	}
	defer application.Close()

	dbc := dbctx.New(context.Background())
	created, skipped := 0, 0
	for _, t := range seed.Topics {
		if t.Title == "" {
			continue
		}
		// Seeding is idempotent on title.
		if _, err := application.Repos.Topic.GetByTitle(dbc, t.Title); err == nil {
			skipped++
			continue
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			fmt.Printf("lookup topic %q: %v\n", t.Title, err)
			os.Exit(1)
		}

		if _, err := application.Repos.Topic.Create(dbc, &domain.Topic{
			Title:        t.Title,
			Description:  t.Description,
			Persona:      t.Persona,
			MaterialText: t.MaterialText,
		}); err != nil {
			fmt.Printf("create topic %q: %v\n", t.Title, err)
			os.Exit(1)
		}
		created++
	}

	application.Log.Info("Topic seeding done", "created", created, "skipped", skipped)
}
