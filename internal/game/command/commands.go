// Package command provides the command registry, parser, built-in command
// definitions, and the per-session Processor that executes them.
package command

// Categories for organizing commands.
const (
	CategoryTrade  = "trade"
	CategoryInfo   = "info"
	CategorySystem = "system"
)

// Handler identifiers mapping commands to Processor handlers.
const (
	HandlerShop      = "shop"
	HandlerInventory = "inventory"
	HandlerProfile   = "profile"
	HandlerPrices    = "prices"
	HandlerHelp      = "help"
	HandlerQuit      = "quit"
)

// Command defines a player-invocable command.
type Command struct {
	// Name is the canonical command name.
	Name string
	// Aliases are alternate names for this command.
	Aliases []string
	// Help is the short help text displayed to players.
	Help string
	// Usage shows the argument form, empty for commands without arguments.
	Usage string
	// Category groups the command.
	Category string
	// Handler selects the Processor handler.
	Handler string
}

// BuiltinCommands returns all built-in commands.
func BuiltinCommands() []Command {
	return []Command{
		{Name: "shop", Help: "Buy or sell items", Usage: "shop:buy|sell:<itemType>:<quality>:<amount>", Category: CategoryTrade, Handler: HandlerShop},
		{Name: "prices", Aliases: []string{"price"}, Help: "Show buy and sell prices", Category: CategoryTrade, Handler: HandlerPrices},

		{Name: "inventory", Aliases: []string{"inv", "i"}, Help: "Show your items", Category: CategoryInfo, Handler: HandlerInventory},
		{Name: "profile", Aliases: []string{"stats"}, Help: "Show your account stats", Category: CategoryInfo, Handler: HandlerProfile},

		{Name: "help", Aliases: []string{"?"}, Help: "Show available commands", Category: CategorySystem, Handler: HandlerHelp},
		{Name: "quit", Aliases: []string{"exit"}, Help: "End the session", Category: CategorySystem, Handler: HandlerQuit},
	}
}
