// This file is part of linkcable.
//
// linkcable is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// linkcable is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with linkcable.  If not, see <https://www.gnu.org/licenses/>.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/bradleyjkemp/memviz"
	"github.com/invopop/jsonschema"
	"github.com/joho/godotenv"

	"github.com/jetsetilly/linkcable/battle"
	"github.com/jetsetilly/linkcable/game"
	"github.com/jetsetilly/linkcable/logger"
	"github.com/jetsetilly/linkcable/match"
	"github.com/jetsetilly/linkcable/modalflag"
	"github.com/jetsetilly/linkcable/performance"
	"github.com/jetsetilly/linkcable/prefs"
	"github.com/jetsetilly/linkcable/protocol"
	"github.com/jetsetilly/linkcable/random"
	"github.com/jetsetilly/linkcable/replay"
	"github.com/jetsetilly/linkcable/session"
	"github.com/jetsetilly/linkcable/statsview"
	"github.com/jetsetilly/linkcable/transport"
	"github.com/jetsetilly/linkcable/tugofwar"
	"github.com/jetsetilly/linkcable/userinput"
	"github.com/jetsetilly/linkcable/version"
)

// environment variables providing defaults for command line flags. the
// variables can be set in a .env file in the working directory
const (
	envListen  = "LINKCABLE_LISTEN"
	envPeer    = "LINKCABLE_PEER"
	envReplays = "LINKCABLE_REPLAYS"
)

const defaultListen = ":12600"

// how often the status line is printed when the -stats flag is set
const statsPeriod = time.Second

// how often the held buttons are sent to the session
const keyboardPeriod = 10 * time.Millisecond

func main() {
	// a missing .env file is normal
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Printf("* error: %v\n", err)
		os.Exit(10)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	exitVal := launch(ctx)
	stop()

	os.Exit(exitVal)
}

func launch(ctx context.Context) int {
	logger.Logf(logger.Allow, "linkcable", "%s", version.Version())

	md := &modalflag.Modes{Output: os.Stdout}
	md.NewArgs(os.Args[1:])
	md.NewMode()
	md.AddSubModes("PLAY", "HOST", "JOIN", "REPLAY", "INFO", "SCHEMA", "VERSION")

	p, err := md.Parse()
	switch p {
	case modalflag.ParseHelp:
		return 0

	case modalflag.ParseError:
		fmt.Printf("* error: %v\n", err)
		return 10
	}

	switch md.Mode() {
	case "PLAY":
		err = play(ctx, md)

	case "HOST":
		err = host(ctx, md)

	case "JOIN":
		err = join(ctx, md)

	case "REPLAY":
		err = playback(ctx, md)

	case "INFO":
		err = info(md)

	case "SCHEMA":
		err = schema(md)

	case "VERSION":
		fmt.Fprintf(md.Output, "%s\n", version.Version())
	}

	if err != nil {
		fmt.Printf("* error in %s mode: %s\n", md.String(), err)
		return 20
	}

	return 0
}

// flags shared by the modes that run a session
type sessionFlags struct {
	log      *bool
	stats    *bool
	keyboard *bool
	profile  *string
}

func addSessionFlags(md *modalflag.Modes) sessionFlags {
	return sessionFlags{
		log:      md.AddBool("log", false, "echo debugging log to stdout"),
		stats:    md.AddBool("stats", false, "print session statistics every second"),
		keyboard: md.AddBool("keyboard", true, "read the keypad from the terminal"),
		profile:  md.AddString("profile", "none", "run session through profiler: cpu, mem, trace, all (comma sep)"),
	}
}

func (f sessionFlags) apply(md *modalflag.Modes) {
	if *f.log {
		logger.SetEcho(logger.NewColorizer(md.Output), false)
	} else {
		logger.SetEcho(nil, false)
	}
	if *f.stats && statsview.Available() {
		statsview.Launch(md.Output)
	}
}

// run the session until it ends. the keyboard and the stats output are
// serviced while the session is running
func runSession(ctx context.Context, md *modalflag.Modes, f sessionFlags, sess *session.Session) error {
	profile, err := performance.ParseProfileString(*f.profile)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if *f.keyboard {
		kb, err := userinput.NewKeyboard(os.Stdin)
		if err != nil {
			return err
		}
		defer kb.Close()

		go func() {
			ctrl := userinput.NewControllers(0)
			tick := time.NewTicker(keyboardPeriod)
			defer tick.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case ev, ok := <-kb.Events():
					if !ok {
						return
					}
					ctrl.HandleUserInput(ev, time.Now())
					if ctrl.Quit {
						cancel()
						return
					}
				case <-tick.C:
				}
				ctrl.Update(time.Now(), sess)
			}
		}()
	}

	if *f.stats {
		go func() {
			tick := time.NewTicker(statsPeriod)
			defer tick.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-tick.C:
					fmt.Fprintf(md.Output, "%s\n", sess.Stats())
				}
			}
		}()
	}

	return performance.RunProfiler(profile, fmt.Sprintf("%s_%s", version.ApplicationName, strings.ReplaceAll(sess.Mode().String(), " ", "_")), func() error {
		return sess.Run(ctx)
	})
}

func play(ctx context.Context, md *modalflag.Modes) error {
	md.NewMode()

	f := addSessionFlags(md)
	speed := md.AddFloat64("speed", 1.0, "speed multiplier")
	fps := md.AddFloat64("fps", 60, "nominal frame rate. zero runs as fast as possible")

	p, err := md.Parse()
	if err != nil || p != modalflag.ParseContinue {
		return err
	}
	if len(md.RemainingArgs()) > 0 {
		return fmt.Errorf("too many arguments for %s mode", md)
	}
	f.apply(md)

	core := tugofwar.NewMachine(tugofwar.Config{})
	sess := session.NewSinglePlayer(core, *fps, *speed, func() bool {
		return core.Status().Mode == tugofwar.Over
	})

	if err := runSession(ctx, md, f, sess); err != nil {
		return err
	}

	fmt.Fprintf(md.Output, "%s\n", core.Status())
	return nil
}

// flags shared by the HOST and JOIN modes
type netplayFlags struct {
	sessionFlags
	prefs     *string
	code      *string
	matchType *int
	replays   *string
}

func addNetplayFlags(md *modalflag.Modes) netplayFlags {
	return netplayFlags{
		sessionFlags: addSessionFlags(md),
		prefs:        md.AddString("prefs", "", "preference overrides. eg. \"match.inputDelay::5; match.recordReplays::false\""),
		code:         md.AddString("code", "linkcable", "link code used in the names of replay files"),
		matchType:    md.AddInt("type", 0, "match type"),
		replays:      md.AddString("replays", os.Getenv(envReplays), "directory for replay files"),
	}
}

func host(ctx context.Context, md *modalflag.Modes) error {
	md.NewMode()

	listen := os.Getenv(envListen)
	if listen == "" {
		listen = defaultListen
	}

	f := addNetplayFlags(md)
	addr := md.AddString("listen", listen, "address to listen on")

	p, err := md.Parse()
	if err != nil || p != modalflag.ParseContinue {
		return err
	}
	f.apply(md)

	l, err := transport.Listen(*addr)
	if err != nil {
		return err
	}
	defer l.Close()

	fmt.Fprintf(md.Output, "waiting for peer at %s\n", l.URL())

	conn, err := l.Accept(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	return netplay(ctx, md, f, conn, true)
}

func join(ctx context.Context, md *modalflag.Modes) error {
	md.NewMode()

	f := addNetplayFlags(md)
	peer := md.AddString("peer", os.Getenv(envPeer), "websocket URL of the host. eg. ws://localhost:12600/link")

	p, err := md.Parse()
	if err != nil || p != modalflag.ParseContinue {
		return err
	}
	f.apply(md)

	if *peer == "" {
		return fmt.Errorf("peer URL required for %s mode", md)
	}

	conn, err := transport.Dial(ctx, *peer)
	if err != nil {
		return err
	}
	defer conn.Close()

	return netplay(ctx, md, f, conn, false)
}

func netplay(ctx context.Context, md *modalflag.Modes, f netplayFlags, conn transport.Conn, offerer bool) error {
	if *f.prefs != "" {
		prefs.PushCommandLineStack(*f.prefs)
		defer prefs.PopCommandLineStack()
	}

	pref, err := match.NewPreferences("")
	if err != nil {
		return err
	}

	settings := pref.Settings(uint8(*f.matchType), *f.code)
	if *f.replays != "" {
		settings.ReplaysPath = *f.replays
	}

	local := protocol.Hello{
		ProtocolVersion: protocol.Version,
		InputDelay:      uint32(settings.LocalDelay),
		MatchType:       settings.MatchType,
		Seed:            random.NewSeed(),
	}

	remote, seed, err := session.Negotiate(ctx, conn, local, offerer)
	if err != nil {
		return err
	}
	settings.RemoteDelay = int(remote.InputDelay)

	sess, err := session.NewNetplay(session.NetplayConfig{
		Core:       tugofwar.NewMachine(tugofwar.Config{}),
		ShadowCore: tugofwar.NewMachine(tugofwar.Config{}),
		Munger:     game.NewMunger(tugofwar.Offsets()),
		Conn:       conn,
		Settings:   settings,
		IsOfferer:  offerer,
		Seed:       seed,
	})
	if err != nil {
		return err
	}

	if err := runSession(ctx, md, f.sessionFlags, sess); err != nil {
		return err
	}

	st := sess.Stats()
	fmt.Fprintf(md.Output, "match over: %d wins, %d losses, %d draws\n", st.Wins, st.Losses, st.Draws)

	return nil
}

func playback(ctx context.Context, md *modalflag.Modes) error {
	md.NewMode()

	f := addSessionFlags(md)
	fps := md.AddFloat64("fps", 60, "frame rate of playback. zero runs as fast as possible")

	p, err := md.Parse()
	if err != nil || p != modalflag.ParseContinue {
		return err
	}

	// the keyboard is never used for playback
	off := false
	f.keyboard = &off
	f.apply(md)

	rep, err := readReplay(md)
	if err != nil {
		return err
	}

	sess, err := session.NewPlayback(tugofwar.NewMachine(tugofwar.Config{}), tugofwar.NewMachine(tugofwar.Config{}),
		game.NewMunger(tugofwar.Offsets()), rep, *fps)
	if err != nil {
		return err
	}

	if err := runSession(ctx, md, f, sess); err != nil {
		return err
	}

	if r := sess.Replayer().Result(); r != battle.Unknown {
		fmt.Fprintf(md.Output, "%s: %s\n", rep.Metadata, r)
	}
	return nil
}

func readReplay(md *modalflag.Modes) (*replay.Replay, error) {
	switch len(md.RemainingArgs()) {
	case 0:
		return nil, fmt.Errorf("replay file required for %s mode", md)
	case 1:
	default:
		return nil, fmt.Errorf("too many arguments for %s mode", md)
	}

	fl, err := os.Open(md.GetArg(0))
	if err != nil {
		return nil, err
	}
	defer fl.Close()

	return replay.Read(fl)
}

func info(md *modalflag.Modes) error {
	md.NewMode()

	dot := md.AddBool("dot", false, "output the metadata as a graphviz dot graph")

	p, err := md.Parse()
	if err != nil || p != modalflag.ParseContinue {
		return err
	}

	rep, err := readReplay(md)
	if err != nil {
		return err
	}

	if *dot {
		memviz.Map(md.Output, &rep.Metadata)
		return nil
	}

	return writeInfo(md.Output, rep)
}

func writeInfo(output io.Writer, rep *replay.Replay) error {
	b, err := json.MarshalIndent(rep.Metadata, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintf(output, "%s\n", b)
	fmt.Fprintf(output, "local state: %d bytes\n", len(rep.LocalState))
	fmt.Fprintf(output, "remote state: %d bytes\n", len(rep.RemoteState))
	fmt.Fprintf(output, "inputs: %d\n", len(rep.Pairs))
	return nil
}

func schema(md *modalflag.Modes) error {
	md.NewMode()
	md.AddSubModes("REPLAY", "STATS")

	p, err := md.Parse()
	if err != nil || p != modalflag.ParseContinue {
		return err
	}

	reflector := jsonschema.Reflector{}

	var s *jsonschema.Schema
	switch md.Mode() {
	case "REPLAY":
		s = reflector.Reflect(&replay.Metadata{})
	case "STATS":
		s = reflector.Reflect(&session.Stats{})
	}

	b, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintf(md.Output, "%s\n", b)

	return nil
}
