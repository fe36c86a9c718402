package bot

import (
	"log"
	"sync/atomic"
	"time"

	"guardian-bot/commands"
	"guardian-bot/config"
	"guardian-bot/economy"
	"guardian-bot/model"
	"guardian-bot/moderation"
	"guardian-bot/permissions"
	"guardian-bot/tasks"
	"guardian-bot/utils"
	"guardian-bot/utils/database"

	"github.com/bwmarrin/discordgo"
)

type Bot struct {
	Session            *discordgo.Session
	RegisteredCommands []*discordgo.ApplicationCommand
	config             atomic.Value // *model.Config
	CommandHandlers    map[string]func(s *discordgo.Session, i *discordgo.InteractionCreate)

	Store      *database.Store
	Economy    *economy.Engine
	Moderation *moderation.Service
	Resolver   *permissions.Resolver
	Reset      *tasks.ResetScheduler

	scheduler *Scheduler
	done      chan struct{}
}

func (b *Bot) GetConfig() *model.Config {
	return b.config.Load().(*model.Config)
}

func (b *Bot) GetSession() *discordgo.Session {
	return b.Session
}

func New(cfg *model.Config, store *database.Store) (*Bot, error) {
	dg, err := discordgo.New("Bot " + cfg.BotToken)
	if err != nil {
		return nil, err
	}
	dg.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMessages |
		discordgo.IntentsGuildMembers | discordgo.IntentMessageContent
	dg.StateEnabled = false

	b := &Bot{
		Session: dg,
		Store:   store,
		done:    make(chan struct{}),
	}
	b.config.Store(cfg)

	clock := utils.SystemClock{}
	locks := utils.NewKeyLock()
	roster := &GuildRoster{bot: b}

	b.Resolver = permissions.NewResolver(
		cfg.OwnerID,
		store,
		roster,
		cfg.Settings.RosterCacheSize,
		time.Duration(cfg.Settings.RosterCacheTTLSeconds)*time.Second,
	)
	storeTimeout := time.Duration(cfg.Settings.StoreTimeoutSeconds) * time.Second
	b.Moderation = moderation.NewService(store, store, store, b.Resolver, clock, locks, cfg.AuditWebhookURL, storeTimeout)
	b.Economy = economy.NewEngine(store, store, store, store, clock, locks,
		economy.NewValidator(cfg.Settings.MessagesPerMinute), storeTimeout)
	b.Reset = tasks.NewResetScheduler(store, clock, cfg.AuditWebhookURL)
	b.scheduler = NewScheduler(b)

	return b, nil
}

func (b *Bot) GetScheduler() *Scheduler {
	return b.scheduler
}

func (b *Bot) Close() {
	log.Println("Gracefully shutting down.")
	close(b.done) // Signal all goroutines to stop

	b.scheduler.Stop()
	b.Session.Close()
}

func (b *Bot) RefreshCommands(guildID string) {
	serverCfg, ok := b.GetConfig().ServerConfigs[guildID]
	if !ok {
		log.Printf("Could not find server config for guild: %s", guildID)
		return
	}
	log.Printf("Updating commands for guild %s", serverCfg.GuildID)

	cmds := commands.GenerateCommands()
	log.Printf("Registering %d commands for guild %s...", len(cmds), serverCfg.GuildID)
	registeredCmds, err := b.Session.ApplicationCommandBulkOverwrite(b.Session.State.User.ID, serverCfg.GuildID, cmds)
	if err != nil {
		log.Printf("cannot update commands for guild '%s': %v", serverCfg.GuildID, err)
		return
	}
	b.RegisteredCommands = append(b.RegisteredCommands, registeredCmds...)
}

func (b *Bot) UnregisterCommands(guildID string) {
	existing, err := b.Session.ApplicationCommands(b.Session.State.User.ID, guildID)
	if err != nil {
		log.Printf("Could not fetch commands for guild %s: %v", guildID, err)
		return
	}
	for _, cmd := range existing {
		if err := b.Session.ApplicationCommandDelete(b.Session.State.User.ID, guildID, cmd.ID); err != nil {
			log.Printf("Could not delete command %s in guild %s: %v", cmd.Name, guildID, err)
		}
	}
}

func (b *Bot) ReloadConfig() error {
	log.Println("Reloading configuration...")
	newCfg, err := config.Load()
	if err != nil {
		log.Printf("Error reloading config: %v", err)
		return err
	}

	b.config.Store(newCfg)
	log.Println("Configuration reloaded successfully.")

	log.Println("Refreshing commands for all guilds...")
	for _, serverCfg := range newCfg.ServerConfigs {
		go b.RefreshCommands(serverCfg.GuildID)
	}

	return nil
}
