package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/zurustar/musicdec/pkg/archive"
	"github.com/zurustar/musicdec/pkg/cli"
	"github.com/zurustar/musicdec/pkg/export"
	"github.com/zurustar/musicdec/pkg/logger"
	"github.com/zurustar/musicdec/pkg/music"
	"github.com/zurustar/musicdec/pkg/music/mod"
	"github.com/zurustar/musicdec/pkg/music/tone"
	"github.com/zurustar/musicdec/pkg/music/xmi"
	"github.com/zurustar/musicdec/pkg/playback"
)

// Application はアプリケーションのメインロジックを管理する
type Application struct {
	config     *cli.Config
	log        *slog.Logger
	stdout     io.Writer
	logOut     io.Writer
	routerOpts []playback.RouterOption
}

// Option configures an Application.
type Option func(*Application)

// WithStdout redirects dumps, track lists and help text.
func WithStdout(w io.Writer) Option {
	return func(app *Application) { app.stdout = w }
}

// WithLogOutput redirects log records.
func WithLogOutput(w io.Writer) Option {
	return func(app *Application) { app.logOut = w }
}

// WithRouterOptions appends options to the playback router built for
// --play. They are applied after the ones derived from the command line.
func WithRouterOptions(opts ...playback.RouterOption) Option {
	return func(app *Application) { app.routerOpts = append(app.routerOpts, opts...) }
}

// New Applicationを作成
func New(opts ...Option) *Application {
	app := &Application{
		stdout: os.Stdout,
		logOut: os.Stderr,
	}
	for _, opt := range opts {
		opt(app)
	}
	return app
}

// Run アプリケーションを実行
func (app *Application) Run(args []string) error {
	// 1. コマンドライン引数の解析
	if err := app.parseArgs(args); err != nil {
		return fmt.Errorf("failed to parse args: %w", err)
	}

	if app.config.ShowHelp {
		cli.PrintHelp(app.stdout)
		return nil
	}

	// 2. ロガーの初期化
	if err := app.initLogger(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	app.log.Debug("Application started", "archive", app.config.ArchivePath, "format", app.config.Format)

	// 3. アーカイブを開く
	dir, err := archive.Open(app.config.ArchivePath, app.config.Pattern)
	if err != nil {
		return fmt.Errorf("failed to open archive: %w", err)
	}

	if app.config.Action == cli.ActionList {
		return app.listTracks(dir)
	}

	// 4. トラックのデコード
	tl, err := app.loadTimeline(dir)
	if err != nil {
		return err
	}

	app.log.Info("Track decoded",
		"track", app.config.Track,
		"events", tl.Len(),
		"duration_ms", tl.Duration(),
		"channels", tl.Channels())

	// 5. 処理の実行
	switch app.config.Action {
	case cli.ActionExport:
		err = app.exportTrack(tl)
	case cli.ActionPlay:
		err = app.play(tl)
	default:
		err = app.dump(tl)
	}
	if err != nil {
		return err
	}

	app.log.Debug("Application terminated normally")
	return nil
}

// parseArgs コマンドライン引数を解析
func (app *Application) parseArgs(args []string) error {
	config, err := cli.ParseArgs(args)
	if err != nil {
		return err
	}
	app.config = config
	return nil
}

// initLogger ロガーを初期化
func (app *Application) initLogger() error {
	if err := logger.InitLoggerTo(app.logOut, app.config.LogLevel, app.config.LogFormat); err != nil {
		return err
	}
	app.log = logger.GetLogger()
	return nil
}

func (app *Application) source() playback.Source {
	if app.config.Format == "mod" {
		return playback.SourceMOD
	}
	return playback.SourceXMI
}

func (app *Application) listTracks(dir *archive.Directory) error {
	ids, err := dir.List()
	if err != nil {
		return fmt.Errorf("failed to list tracks: %w", err)
	}
	for _, id := range ids {
		fmt.Fprintf(app.stdout, "%3d  %s\n", id, dir.Name(id))
	}
	app.log.Debug("Tracks listed", "count", len(ids))
	return nil
}

// loadTimeline トラックを読み込んでタイムラインに変換する
func (app *Application) loadTimeline(dir *archive.Directory) (*music.Timeline, error) {
	data, err := dir.Track(app.config.Track)
	if err != nil {
		return nil, fmt.Errorf("failed to read track %d: %w", app.config.Track, err)
	}
	app.log.Debug("Track loaded", "file", dir.Name(app.config.Track), "size", len(data))

	if app.source() == playback.SourceMOD {
		m, err := mod.Parse(data)
		if err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", dir.Name(app.config.Track), err)
		}
		app.log.Info("Module loaded", "title", m.Title, "song_length", m.SongLength, "patterns", len(m.Patterns))
		return m.Timeline(), nil
	}

	tl, err := xmi.Parse(data, xmi.WithLogger(app.log))
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", dir.Name(app.config.Track), err)
	}
	return tl, nil
}

func (app *Application) dump(tl *music.Timeline) error {
	for _, e := range tl.All() {
		if _, err := fmt.Fprintln(app.stdout, e); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(app.stdout, "# %d events, %.3f ms, channels %v\n", tl.Len(), tl.Duration(), tl.Channels())
	return err
}

// exportTrack 拡張子に応じてWAVまたはSMFに書き出す
func (app *Application) exportTrack(tl *music.Timeline) (err error) {
	path := app.config.Output
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("failed to close output: %w", cerr)
		}
	}()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".mid", ".midi":
		if err := export.WriteSMF(f, tl); err != nil {
			return err
		}
		app.log.Info("SMF written", "file", path, "events", tl.Len())
		return nil
	}

	samples, channels, err := app.renderPCM(tl)
	if err != nil {
		return err
	}
	if err := export.WriteWAV(f, samples, channels); err != nil {
		return err
	}
	app.log.Info("WAV written", "file", path, "channels", channels, "frames", len(samples)/channels)
	return nil
}

// renderPCM XMIはSoundFontがあればステレオで、それ以外はトーン合成のモノラルで描画する
func (app *Application) renderPCM(tl *music.Timeline) ([]int16, int, error) {
	if app.source() == playback.SourceXMI {
		renderer, err := app.loadSoundFont()
		if err != nil {
			return nil, 0, err
		}
		if renderer != nil {
			samples, err := renderer.Render(tl)
			if err != nil {
				return nil, 0, fmt.Errorf("failed to render with SoundFont: %w", err)
			}
			return samples, 2, nil
		}
	}

	tuning, err := tone.ParseTuning(app.config.Tuning)
	if err != nil {
		return nil, 0, err
	}
	return tone.Render(tl, tone.WithTuning(tuning)), 1, nil
}

// loadSoundFont SoundFontを探して読み込む。見つからない場合はnilを返す。
// 明示的に指定されたファイルが読めない場合はエラーとする。
func (app *Application) loadSoundFont() (*playback.SoundFontRenderer, error) {
	loc := findSoundFont(app.config.SoundFont, app.config.ArchivePath)
	if loc == nil {
		app.log.Debug("No SoundFont found")
		return nil, nil
	}

	sf, err := playback.LoadSoundFont(loc.FileSystem, loc.Path)
	if err != nil {
		if app.config.SoundFont != "" {
			return nil, fmt.Errorf("failed to load SoundFont: %w", err)
		}
		app.log.Warn("Ignoring unreadable SoundFont", "path", loc.Path, "error", err)
		return nil, nil
	}
	app.log.Info("SoundFont loaded", "path", loc.Path)
	return playback.NewSoundFontRenderer(sf), nil
}

// play 再生する。タイムアウトや割り込みによる停止は正常終了とみなす。
func (app *Application) play(tl *music.Timeline) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if app.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, app.config.Timeout)
		defer cancel()
	}

	router, err := app.newRouter()
	if err != nil {
		return err
	}

	backend, err := router.Play(ctx, tl, app.source())
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		app.log.Info("Timeout reached, playback stopped", "backend", backend)
	case errors.Is(err, context.Canceled):
		app.log.Info("Playback interrupted", "backend", backend)
	case err != nil:
		return fmt.Errorf("playback failed (%s): %w", backend, err)
	default:
		app.log.Info("Playback finished", "backend", backend)
	}
	return nil
}

func (app *Application) newRouter() (*playback.Router, error) {
	tuning, err := tone.ParseTuning(app.config.Tuning)
	if err != nil {
		return nil, err
	}

	opts := []playback.RouterOption{
		playback.WithLogger(app.log),
		playback.WithTuning(tuning),
	}
	if app.config.NoDevice {
		opts = append(opts, playback.WithoutDevice())
	} else {
		opts = append(opts, playback.WithDevice(app.config.Device))
	}
	if app.source() == playback.SourceXMI {
		renderer, err := app.loadSoundFont()
		if err != nil {
			return nil, err
		}
		if renderer != nil {
			opts = append(opts, playback.WithSoundFont(renderer))
		}
	}
	opts = append(opts, app.routerOpts...)

	return playback.NewRouter(opts...), nil
}
