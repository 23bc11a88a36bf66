package protocol

import "fmt"

type Command string

const (
	INFO     Command = "INFO"
	PING     Command = "PING"
	HELP     Command = "HELP"
	ADD      Command = "ADD"
	BULKADD  Command = "BULKADD"
	GET      Command = "GET"
	GETALL   Command = "GET ALL AS JSON"
	CLEAR    Command = "CLEAR"
	CLEARALL Command = "CLEAR ALL"
	FLUSH    Command = "FLUSH"
	FLUSHALL Command = "FLUSH ALL"
	CREATE   Command = "CREATE"
	USE      Command = "USE"

	// DDAKLUB is the sentinel line that terminates a BULKADD batch.
	DDAKLUB Command = "DDAKLUB"
)

func (c Command) String() string {
	return string(c)
}

// FormatAdd builds an ADD command for a single tick.
//
//	ADD 1505177459.658, 139010, t, t, 0.0703629, 7.65064249;
func FormatAdd(u Update) string {
	return fmt.Sprintf("%s %s", ADD, u.Line())
}

// FormatAddInto builds the ADD ... INTO variant, which appends the tick
// to the named store instead of the connection's current store.
//
// The server splits this command on ` INTO ` and discards the two
// characters before the split when it extracts the data line. The two
// spaces of padding after the semicolon are what gets discarded; without
// them the semicolon itself is lost and the line no longer parses.
func FormatAddInto(store string, u Update) string {
	return fmt.Sprintf("%s %s   INTO %s", ADD, u.Line(), store)
}

// FormatGet builds a GET command that asks for the first count ticks of
// the current store, JSON encoded.
func FormatGet(count int) string {
	return fmt.Sprintf("%s %d AS JSON", GET, count)
}

func FormatCreate(store string) string {
	return fmt.Sprintf("%s %s", CREATE, store)
}

func FormatUse(store string) string {
	return fmt.Sprintf("%s %s", USE, store)
}
