package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// switchValue is a boolean flag that also accepts yes/no and on/off.
type switchValue struct {
	target *bool
	name   string
}

func (value *switchValue) Set(input string) error {
	parsed, ok := parseSwitchLiteral(input)
	if !ok {
		return fmt.Errorf("invalid value %q for --%s, expected true/false, yes/no, on/off or 1/0", input, value.name)
	}
	*value.target = parsed
	return nil
}

func (value *switchValue) String() string {
	return strconv.FormatBool(value.target != nil && *value.target)
}

// Type matches pflag booleans so help shows no value placeholder.
func (value *switchValue) Type() string {
	return "bool"
}

func parseSwitchLiteral(input string) (bool, bool) {
	literal := strings.ToLower(strings.TrimSpace(input))
	switch literal {
	case "yes", "on":
		return true, true
	case "no", "off":
		return false, true
	}
	parsed, parseError := strconv.ParseBool(literal)
	return parsed, parseError == nil
}

// registerBooleanFlag adds a switch that defaults to false and is set to true when
// given without a value.
func registerBooleanFlag(flagSet *pflag.FlagSet, target *bool, name string, shorthand string, usage string) {
	*target = false
	flag := flagSet.VarPF(&switchValue{target: target, name: name}, name, shorthand, usage)
	flag.DefValue = "false"
	flag.NoOptDefVal = "true"
}

// normalizeBooleanFlagArguments rewrites "--switch yes" as "--switch=yes". A following
// argument that is not a boolean literal is left alone, so it still reaches the
// command as a positional argument.
func normalizeBooleanFlagArguments(command *cobra.Command, arguments []string) []string {
	switches := map[string]bool{}
	command.Flags().VisitAll(func(flag *pflag.Flag) {
		_, isSwitch := flag.Value.(*switchValue)
		switches[flag.Name] = isSwitch
	})

	normalized := make([]string, 0, len(arguments))
	for index := 0; index < len(arguments); index++ {
		argument := arguments[index]
		if argument == "--" {
			return append(normalized, arguments[index:]...)
		}
		name, isLongFlag := strings.CutPrefix(argument, "--")
		if isLongFlag && switches[name] && index+1 < len(arguments) {
			if _, ok := parseSwitchLiteral(arguments[index+1]); ok {
				normalized = append(normalized, argument+"="+arguments[index+1])
				index++
				continue
			}
		}
		normalized = append(normalized, argument)
	}
	return normalized
}
