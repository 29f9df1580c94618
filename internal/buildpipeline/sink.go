package buildpipeline

// ChannelSink forwards driver events into a channel, typically the one
// feeding the progress TUI. A nil channel drops everything, so the
// driver can emit without checking whether anyone listens.
type ChannelSink struct {
	Ch chan<- Event
}

func (s ChannelSink) OnEvent(evt Event) {
	if s.Ch == nil {
		return
	}
	s.Ch <- evt
}
