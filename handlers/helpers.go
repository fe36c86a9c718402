package handlers

import (
	"errors"
	"fmt"
	"strconv"

	"guardian-bot/model"

	"github.com/bwmarrin/discordgo"
)

func parseSnowflake(id string) (int64, error) {
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid snowflake %q: %w", id, err)
	}
	return n, nil
}

// optionMap indexes interaction options by name.
func optionMap(i *discordgo.InteractionCreate) map[string]*discordgo.ApplicationCommandInteractionDataOption {
	options := i.ApplicationCommandData().Options
	m := make(map[string]*discordgo.ApplicationCommandInteractionDataOption, len(options))
	for _, opt := range options {
		m[opt.Name] = opt
	}
	return m
}

func isNotFound(err error) bool {
	return errors.Is(err, model.ErrNotFound)
}

// userErrorMessage maps core error kinds to text fit for the invoker.
func userErrorMessage(err error) string {
	switch {
	case errors.Is(err, model.ErrPermissionDenied):
		return "You do not have permission to do that."
	case errors.Is(err, model.ErrNotFound):
		return "That member has no record in this group yet."
	case errors.Is(err, model.ErrInvalidState):
		return "That action does not apply to the member's current state."
	case errors.Is(err, model.ErrStoreUnavailable):
		return "The database is busy, please try again."
	default:
		return "Something went wrong, please try again later."
	}
}
