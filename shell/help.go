package shell

import (
	"embed"
	"errors"
	"strings"
)

//go:embed helptext
var helptext embed.FS

func usage(mode string) (*Response, error) {
	dat, err := helptext.ReadFile("helptext/usage-" + mode + ".txt")
	if err != nil {
		return nil, errors.New("could not load helptext: " + err.Error())
	}
	return msg(strings.TrimRight(string(dat), "\n")), nil
}

var helpAliases = map[string]string{
	"pause": "play", "step": "play", "back": "play", "reset": "play", "seek": "play",
	"n": "play", "p": "play",
	"save": "history", "recall": "history",
}

func usageTopic(topic string) (*Response, error) {
	if t, ok := helpAliases[topic]; ok {
		topic = t
	}
	dat, err := helptext.ReadFile("helptext/" + topic + ".txt")
	if err != nil {
		return nil, errors.New("there is no help text for the topic " + topic)
	}
	return msg(strings.TrimRight(string(dat), "\n")), nil
}
