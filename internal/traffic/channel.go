package traffic

import (
	"strings"

	"github.com/kazdan-gif/blog/internal/models"
)

var socialPlatforms = []string{
	"facebook", "instagram", "twitter", "linkedin", "pinterest",
	"tiktok", "youtube", "reddit", "snapchat", "threads",
}

type channelRule struct {
	match   func(source, medium string) bool
	channel models.Channel
}

// el orden importa: gana la primera regla que aplica
var channelRules = []channelRule{
	{func(_, m string) bool { return m == "cpc" }, models.ChannelPaidSearch},
	{func(_, m string) bool { return m == "organic" }, models.ChannelOrganicSearch},
	{func(s, m string) bool { return s == "(direct)" || m == "(none)" }, models.ChannelDirect},
	{func(_, m string) bool { return m == "email" }, models.ChannelEmailMarketing},
	{func(_, m string) bool { return m == "referral" }, models.ChannelReferral},
	{func(s, _ string) bool { return containsAny(s, socialPlatforms) }, models.ChannelSocial},
}

func ClassifyChannel(source, medium string) models.Channel {
	s, m := norm(source), norm(medium)
	for _, r := range channelRules {
		if r.match(s, m) {
			return r.channel
		}
	}
	return models.ChannelOther
}

// containsAny asume que s ya viene en minúsculas.
func containsAny(s string, names []string) bool {
	for _, n := range names {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}
