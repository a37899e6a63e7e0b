package cmd

import (
	"flag"

	"github.com/etnz/paytracker/docs"
	"github.com/google/subcommands"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

// Completion returns the shell completion tree of ptrack: every subcommand
// with its flags, and files as positional arguments.
func Completion() *complete.Command {
	root := &complete.Command{Sub: make(map[string]*complete.Command)}
	for _, c := range Commands {
		root.Sub[c.Name()] = commandCompletion(c)
	}
	root.Sub["help"] = &complete.Command{Args: commandNames()}
	root.Sub["topic"].Args = topicNames()
	return root
}

func commandCompletion(c subcommands.Command) *complete.Command {
	fs := flag.NewFlagSet(c.Name(), flag.ContinueOnError)
	c.SetFlags(fs)
	flags := make(map[string]complete.Predictor)
	fs.VisitAll(func(f *flag.Flag) {
		if b, ok := f.Value.(interface{ IsBoolFlag() bool }); ok && b.IsBoolFlag() {
			flags[f.Name] = predict.Nothing
			return
		}
		flags[f.Name] = predict.Something
	})
	return &complete.Command{
		Flags: flags,
		Args:  predict.Files("*"),
	}
}

func commandNames() predict.Set {
	var names predict.Set
	for _, c := range Commands {
		names = append(names, c.Name())
	}
	return names
}

func topicNames() predict.Set {
	topics, _ := docs.AllTopics()
	return predict.Set(append(topics, "readme"))
}
