// registerctl is a terminal host for the risk-register persistence core:
// it opens, edits, and saves register documents against a local directory
// or the cloud storage API.
package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/joho/godotenv"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/crrlabs/riskregister/internal/auth"
	"github.com/crrlabs/riskregister/internal/cloudfile"
	"github.com/crrlabs/riskregister/internal/document"
	"github.com/crrlabs/riskregister/internal/localfile"
	"github.com/crrlabs/riskregister/internal/model"
	"github.com/crrlabs/riskregister/internal/secret"
	"github.com/crrlabs/riskregister/internal/store"
	"github.com/crrlabs/riskregister/internal/syncer"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	_ = godotenv.Load()
	ctx := context.Background()

	// ---------- Secret Resolver ----------
	var resolver secret.Resolver
	if os.Getenv("DEV_MODE") == "true" {
		resolver = secret.NewEnvResolver()
	} else {
		cfg, err := config.LoadDefaultConfig(ctx)
		if err != nil {
			log.Fatalf("unable to load AWS config: %v", err)
		}
		resolver = secret.NewSSMResolver(ssm.NewFromConfig(cfg))
	}

	clientID := os.Getenv("OAUTH_CLIENT_ID")
	clientSecret := ""
	if clientID != "" {
		param := envOr("OAUTH_CLIENT_SECRET_PARAM", "/riskregister/oauth-client-secret")
		v, err := resolver.GetSecret(ctx, param)
		if err != nil {
			log.Printf("WARNING: failed to resolve OAUTH_CLIENT_SECRET: %v", err)
		}
		clientSecret = v
	}

	prompts := &stdinPrompter{in: bufio.NewReader(os.Stdin)}

	oauthConfig := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  envOr("OAUTH_REDIRECT_URL", "http://localhost:8090/oauth/callback"),
		Scopes:       []string{"https://www.googleapis.com/auth/drive.file"},
		Endpoint:     google.Endpoint,
	}
	tokens := auth.NewManager(clientID, func() auth.Provider {
		return auth.NewCodeFlowProvider(oauthConfig, prompts.consent)
	})

	executor := cloudfile.NewExecutor(nil, tokens)
	cloud := cloudfile.NewClient(cloudfile.Config{
		BaseURL:     envOr("STORAGE_BASE_URL", "http://localhost:8080"),
		ViewBase:    os.Getenv("STORAGE_VIEW_URL"),
		ContentType: model.MIMEType,
	}, executor)

	dataset := store.NewMemoryStore()
	identity := document.NewIdentity()
	tracker := document.NewTracker(dataset.Dataset, nil)
	local := localfile.NewDirBackend(prompts)

	orch := syncer.New(dataset, cloud, local, tokens, identity, tracker, prompts)

	// A shareable link passed as the first argument triggers a silent load
	// first, with one consent-prompting retry if credentials exist.
	if len(os.Args) > 1 {
		if err := orch.OpenFromLink(ctx, os.Args[1]); err != nil {
			log.Printf("unable to open file from link: %v", err)
		}
	}

	runLoop(ctx, orch, dataset, tracker, prompts)
}

func runLoop(ctx context.Context, orch *syncer.Orchestrator, dataset *store.MemoryStore, tracker *document.Tracker, prompts *stdinPrompter) {
	printStatus(orch)
	for {
		fmt.Print("> ")
		line, err := prompts.in.ReadString('\n')
		if err != nil {
			return
		}
		cmd, arg, _ := strings.Cut(strings.TrimSpace(line), " ")

		var opErr error
		switch cmd {
		case "open":
			opErr = orch.OpenLocal(ctx)
		case "open-cloud":
			if arg != "" {
				opErr = orch.OpenCloud(ctx, arg, true)
			} else {
				opErr = orch.PromptOpenCloud(ctx)
			}
		case "save":
			opErr = orch.Save(ctx)
		case "save-as":
			opErr = orch.SaveAsLocal(ctx)
		case "save-cloud":
			opErr = orch.SaveAsCloud(ctx)
		case "new":
			orch.New()
		case "add":
			dataset.AddEvent(model.Event{Title: arg})
			tracker.MarkDirtySoon()
		case "share":
			if link := orch.ShareLink(); link != "" {
				fmt.Println(link)
			} else {
				fmt.Println("no cloud file to share; save to cloud first")
			}
		case "status":
			tracker.Recompute()
		case "quit", "exit":
			return
		case "":
			continue
		default:
			fmt.Println("commands: open, open-cloud [ref], save, save-as, save-cloud, new, add <title>, share, status, quit")
			continue
		}

		if opErr != nil {
			log.Printf("%s failed: %v", cmd, opErr)
		}
		printStatus(orch)
	}
}

func printStatus(orch *syncer.Orchestrator) {
	st := orch.Status()
	name := st.DisplayName
	if name == "" {
		name = "Unsaved"
	}
	state := "saved"
	if st.Saving {
		state = "saving"
	} else if st.Dirty {
		state = "unsaved changes"
	}
	fmt.Printf("[%s] %s (%s)\n", st.Backend, name, state)
}

// stdinPrompter answers every picker and consent prompt from stdin. An
// empty answer counts as a dismissal.
type stdinPrompter struct {
	in *bufio.Reader
}

func (p *stdinPrompter) ask(label string) (string, error) {
	fmt.Print(label)
	line, err := p.in.ReadString('\n')
	if err != nil {
		return "", err
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return "", localfile.ErrCancelled
	}
	return line, nil
}

func (p *stdinPrompter) OpenPath(ctx context.Context) (string, error) {
	return p.ask("Path to open: ")
}

func (p *stdinPrompter) SavePath(ctx context.Context, suggestedName string) (string, error) {
	return p.ask(fmt.Sprintf("Save to path (suggested %s): ", suggestedName))
}

func (p *stdinPrompter) CloudFileRef(ctx context.Context) (string, error) {
	return p.ask("Cloud file link or ID: ")
}

func (p *stdinPrompter) CloudFileName(ctx context.Context, suggested string) (string, error) {
	return p.ask(fmt.Sprintf("Save to cloud as (suggested %s): ", suggested))
}

func (p *stdinPrompter) consent(ctx context.Context, authURL string) (string, error) {
	fmt.Printf("Visit this URL to authorize access:\n%s\n", authURL)
	return p.ask("Authorization code: ")
}
