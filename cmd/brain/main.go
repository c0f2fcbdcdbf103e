// brain is the command line surface over the shared memory: inbox, search,
// summaries, captures, meeting payloads and the morning briefing.
//
// Usage:
//
//	brain init                    initialize the data files
//	brain inbox [status]          list inbox items
//	brain done                    pick an open inbox item and mark it done
//	brain summary                 overall memory summary
//	brain week                    recent meetings and open items
//	brain search <term>           search observations
//	brain customer <name>         everything known about a customer
//	brain recent [n]              newest observations
//	brain themes                  theme breakdown with examples
//	brain capture [text]          classify a brain dump (stdin when no text)
//	brain meeting <payload.json>  process a meeting payload
//	brain observe <channel> <text> scan one channel message
//	brain incident <id> <summary> log an incident
//	brain decision <topic> <text> log a decision
//	brain briefing                print the morning briefing
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/manifoldco/promptui"

	"secondbrain/internal/briefing"
	"secondbrain/internal/capture"
	"secondbrain/internal/config"
	"secondbrain/internal/config/filesys"
	"secondbrain/internal/entities"
	"secondbrain/internal/logging"
	"secondbrain/internal/meetings"
	"secondbrain/internal/memstore"
	"secondbrain/internal/observer"
	"secondbrain/internal/query"
	"secondbrain/internal/signals"
	"secondbrain/internal/tasks"
)

const configPath = "./brain.yaml"

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	command := ""
	if len(args) > 0 {
		command = args[0]
		args = args[1:]
	}

	cfg := loadConfig()

	logger := logging.File(cfg.LogFile)
	defer logger.Close()
	logging.Init(logger)

	if command == "init" {
		return initStores(cfg)
	}

	memory, err := openMemory(cfg)
	if err != nil {
		return err
	}
	defer memory.Close()

	ents, err := entities.NewFileStore(cfg.Store.EntitiesFile)
	if err != nil {
		return err
	}
	if err := ents.Open(); err != nil {
		return err
	}
	defer ents.Close()

	facade := query.NewFacade(memory, ents)

	switch command {
	case "", "summary":
		return showSummary(facade)
	case "inbox":
		status := memstore.StatusOpen
		if len(args) > 0 {
			status = args[0]
		}
		if status == "all" {
			status = ""
		}
		return showInbox(facade, status)
	case "done":
		return completeItem(facade)
	case "week":
		return showWeek(facade)
	case "search":
		if len(args) == 0 {
			return fmt.Errorf("usage: brain search <term>")
		}
		return searchObservations(facade, strings.Join(args, " "))
	case "customer":
		if len(args) == 0 {
			return fmt.Errorf("usage: brain customer <name>")
		}
		return showCustomer(facade, strings.Join(args, " "))
	case "recent":
		n := 10
		if len(args) > 0 {
			if v, err := strconv.Atoi(args[0]); err == nil {
				n = v
			}
		}
		return showRecent(facade, n)
	case "themes":
		return showThemes(facade)
	case "capture":
		return runCapture(memory, args)
	case "meeting":
		if len(args) == 0 {
			return fmt.Errorf("usage: brain meeting <payload.json>")
		}
		return runMeeting(memory, ents, cfg, args[0])
	case "observe":
		if len(args) < 2 {
			return fmt.Errorf("usage: brain observe <channel> <text>")
		}
		return runObserve(memory, cfg, args[0], strings.Join(args[1:], " "))
	case "incident":
		if len(args) < 2 {
			return fmt.Errorf("usage: brain incident <id> <summary>")
		}
		return facade.LogIncident(args[0], strings.Join(args[1:], " "), nil, "")
	case "decision":
		if len(args) < 2 {
			return fmt.Errorf("usage: brain decision <topic> <decision>")
		}
		return facade.LogDecision(args[0], strings.Join(args[1:], " "), "")
	case "briefing":
		return showBriefing(memory, cfg)
	default:
		return fmt.Errorf("unknown command %q", command)
	}
}

func loadConfig() *config.Config {
	provider, err := filesys.NewProvider(configPath)
	if err != nil {
		return config.Default()
	}
	config.SetProvider(provider)
	cfg, err := config.Load(configPath)
	if err != nil {
		return config.Default()
	}
	return cfg
}

// initStores creates the data files (or the document row) so every other
// command can insist they exist.
func initStores(cfg *config.Config) error {
	if err := os.MkdirAll("./data", 0755); err != nil {
		return err
	}

	var memory memstore.Store
	var err error
	if cfg.Store.Backend == "postgres" {
		memory, err = memstore.NewPgStore(memstore.PgConfigFromEnv(cfg.Store.PostgresEnv), "memory", memstore.PgCreateIfMissing())
	} else {
		memory, err = memstore.NewFileStore(cfg.Store.MemoryFile, memstore.CreateIfMissing())
	}
	if err != nil {
		return err
	}
	if err := memory.Open(); err != nil {
		return err
	}
	defer memory.Close()

	ents, err := entities.NewFileStore(cfg.Store.EntitiesFile, entities.CreateIfMissing())
	if err != nil {
		return err
	}
	if err := ents.Open(); err != nil {
		return err
	}
	defer ents.Close()

	fmt.Println("initialized")
	return nil
}

func openMemory(cfg *config.Config) (memstore.Store, error) {
	var memory memstore.Store
	var err error
	if cfg.Store.Backend == "postgres" {
		memory, err = memstore.NewPgStore(memstore.PgConfigFromEnv(cfg.Store.PostgresEnv), "memory")
	} else {
		memory, err = memstore.NewFileStore(cfg.Store.MemoryFile)
	}
	if err != nil {
		return nil, err
	}
	if err := memory.Open(); err != nil {
		return nil, fmt.Errorf("could not open memory store (run 'brain init' first): %w", err)
	}
	return memory, nil
}

func showSummary(f *query.Facade) error {
	s, err := f.Summarize()
	if err != nil {
		return err
	}
	fmt.Println("MEMORY SUMMARY")
	fmt.Printf("  Incidents:    %d\n", s.Incidents)
	fmt.Printf("  Patterns:     %d\n", s.Patterns)
	fmt.Printf("  Decisions:    %d\n", s.Decisions)
	fmt.Printf("  Observations: %d\n", s.Observations)
	fmt.Printf("  Entities:     %d\n", s.Entities)
	if len(s.TopThemes) > 0 {
		fmt.Println("\nTop themes:")
		for _, t := range s.TopThemes {
			fmt.Printf("  %s: %d\n", t.Name, t.Count)
		}
	}
	if len(s.TopChannels) > 0 {
		fmt.Println("\nBy channel:")
		for _, c := range s.TopChannels {
			fmt.Printf("  #%s: %d\n", c.Name, c.Count)
		}
	}
	return nil
}

func showInbox(f *query.Facade, status string) error {
	entries, err := f.OpenInbox(status)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Println("Inbox empty.")
		return nil
	}
	for _, e := range entries {
		fmt.Printf("[%s %s] (%s) %s\n", e.Date, e.Type, e.Status, e.Content)
	}
	return nil
}

// completeItem shows the open inbox as an interactive picker and marks the
// chosen item done.
func completeItem(f *query.Facade) error {
	entries, err := f.OpenInbox(memstore.StatusOpen)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Println("Nothing open.")
		return nil
	}

	labels := make([]string, len(entries))
	for i, e := range entries {
		content := e.Content
		if len(content) > 70 {
			content = content[:70] + "..."
		}
		labels[i] = fmt.Sprintf("[%s] %s", e.Type, content)
	}

	sel := promptui.Select{
		Label: "Mark done",
		Items: labels,
		Size:  10,
	}
	idx, _, err := sel.Run()
	if err != nil {
		return err
	}
	if err := f.CompleteInbox(entries[idx].Index); err != nil {
		return err
	}
	fmt.Println("Done:", entries[idx].Content)
	return nil
}

func showWeek(f *query.Facade) error {
	week, err := f.SummarizeWeek()
	if err != nil {
		return err
	}
	fmt.Printf("Meetings (%d):\n", len(week.Meetings))
	for _, m := range week.Meetings {
		fmt.Printf("  [%s] %s (%d min)\n", m.Date, m.Title, m.DurationMinutes)
	}
	if len(week.OpenActions) > 0 {
		fmt.Println("\nOpen actions:")
		for _, a := range week.OpenActions {
			fmt.Println("  -", a)
		}
	}
	if len(week.Deadlines) > 0 {
		fmt.Println("\nDeadlines:")
		for _, d := range week.Deadlines {
			fmt.Println("  -", d)
		}
	}
	if len(week.CustomersDiscussed) > 0 {
		fmt.Printf("\nCustomers discussed: %s\n", strings.Join(week.CustomersDiscussed, ", "))
	}
	if len(week.ProjectsDiscussed) > 0 {
		fmt.Printf("Projects discussed: %s\n", strings.Join(week.ProjectsDiscussed, ", "))
	}
	if len(week.KeyDecisions) > 0 {
		fmt.Println("\nKey decisions:")
		decisions := week.KeyDecisions
		if len(decisions) > 5 {
			decisions = decisions[:5]
		}
		for _, d := range decisions {
			fmt.Println("  -", d)
		}
	}
	return nil
}

func searchObservations(f *query.Facade, term string) error {
	results, err := f.SearchObservations(term)
	if err != nil {
		return err
	}
	fmt.Printf("Found %d observations matching %q:\n\n", len(results), term)
	if len(results) > 10 {
		results = results[len(results)-10:]
	}
	for _, obs := range results {
		fmt.Printf("[%s #%s]\n", obs.Date, obs.Channel)
		text := obs.Text()
		if len(text) > 150 {
			text = text[:150] + "..."
		}
		fmt.Printf("  %s\n", text)
		if len(obs.Themes) > 0 {
			fmt.Printf("  Themes: %s\n", strings.Join(obs.Themes, ", "))
		}
		fmt.Println()
	}
	return nil
}

func showCustomer(f *query.Facade, name string) error {
	ctx, err := f.Context(name)
	if err != nil {
		return err
	}
	fmt.Printf("=== Context for %q ===\n\n", name)
	if ctx.Entity != nil {
		fmt.Println("Entity:")
		fmt.Printf("  Name: %s\n", ctx.Entity.Name)
		health := ctx.Entity.Health
		if health == "" {
			health = "unknown"
		}
		fmt.Printf("  Health: %s\n", health)
		fmt.Printf("  Last contact: %s\n", ctx.Entity.LastContact)
	} else {
		fmt.Println("No entity record found.")
	}
	if len(ctx.Incidents) > 0 {
		fmt.Printf("\nIncidents (%d):\n", len(ctx.Incidents))
		for _, inc := range ctx.Incidents {
			fmt.Printf("  [%s] %s\n", inc.Date, inc.Summary)
		}
	}
	if len(ctx.Patterns) > 0 {
		fmt.Println("\nPatterns:")
		for _, pat := range ctx.Patterns {
			fmt.Printf("  Tickets: %d | Sentiment: %s\n", pat.RecentTickets, pat.Sentiment)
			if pat.Notes != "" {
				fmt.Printf("  Notes: %s\n", pat.Notes)
			}
		}
	}
	return nil
}

func showRecent(f *query.Facade, n int) error {
	results, err := f.RecentObservations(n)
	if err != nil {
		return err
	}
	fmt.Printf("=== Last %d Observations ===\n\n", len(results))
	for _, obs := range results {
		fmt.Printf("[%s %s #%s]\n", obs.Date, obs.Time, obs.Channel)
		text := obs.Text()
		if len(text) > 120 {
			text = text[:120] + "..."
		}
		fmt.Printf("  %s\n", text)
		if len(obs.Themes) > 0 {
			fmt.Printf("  Themes: %s\n", strings.Join(obs.Themes, ", "))
		}
		fmt.Println()
	}
	return nil
}

func showThemes(f *query.Facade) error {
	details, err := f.ThemeBreakdown()
	if err != nil {
		return err
	}
	fmt.Println("=== Theme Analysis ===")
	for _, d := range details {
		fmt.Printf("\n%s: %d occurrences\n", d.Name, d.Count)
		for _, ex := range d.Examples {
			fmt.Printf("  - %s\n", ex)
		}
	}
	return nil
}

func runCapture(memory memstore.Store, args []string) error {
	text := strings.Join(args, " ")
	if text == "" {
		raw, err := io.ReadAll(os.Stdin)
		if err != nil {
			return err
		}
		text = string(raw)
	}
	proc := capture.NewProcessor(memory, tasks.NewRecorder())
	result, err := proc.Process(text, "cli")
	if err != nil {
		return err
	}
	fmt.Println(result.Summary())
	return nil
}

func runMeeting(memory memstore.Store, ents entities.Store, cfg *config.Config, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var input meetings.Input
	if err := json.Unmarshal(raw, &input); err != nil {
		return fmt.Errorf("bad meeting payload: %w", err)
	}

	customers := cfg.CustomerKeywords
	if doc, err := ents.Load(); err == nil {
		customers = append(append([]string{}, customers...), doc.CustomerNames()...)
	}
	extractor := signals.NewExtractor(signals.Context{
		SelfNames:       cfg.Identity.Names,
		CustomerNames:   customers,
		ProjectKeywords: cfg.ProjectKeywords,
	})

	proc := meetings.NewProcessor(memory, tasks.NewRecorder(), extractor, cfg)
	record, err := proc.Process(input)
	if err != nil {
		return err
	}
	fmt.Printf("Processed %q: %d actions, %d follow-ups, %d deadlines\n",
		record.Title, len(record.Signals.ActionsForMe), len(record.Signals.FollowUps), len(record.Signals.Deadlines))
	return nil
}

func runObserve(memory memstore.Store, cfg *config.Config, channel, text string) error {
	scanner := observer.NewScanner(memory, cfg)
	obs, err := scanner.Observe(observer.Message{Channel: channel, Text: text})
	if err != nil {
		return err
	}
	if obs == nil {
		fmt.Println("Nothing worth keeping.")
		return nil
	}
	fmt.Printf("Logged: themes=%s customers=%s\n",
		strings.Join(obs.Themes, ","), strings.Join(obs.Customers, ","))
	return nil
}

func showBriefing(memory memstore.Store, cfg *config.Config) error {
	name := "there"
	if len(cfg.Identity.Names) > 0 && cfg.Identity.Names[0] != "" {
		name = cfg.Identity.Names[0]
		name = strings.ToUpper(name[:1]) + name[1:]
	}
	b := briefing.NewBuilder(memory, name)
	text, err := b.Build()
	if err != nil {
		return err
	}
	fmt.Println(text)
	return nil
}
