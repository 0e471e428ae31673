package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	goruntime "runtime"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"

	"dual-subtitle-burner/internal/config"
	"dual-subtitle-burner/internal/diagnostics"
	"dual-subtitle-burner/internal/domain"
	"dual-subtitle-burner/internal/export"
	"dual-subtitle-burner/internal/jobs"
	"dual-subtitle-burner/internal/session"
	"dual-subtitle-burner/internal/subtitles"

	wailsruntime "github.com/wailsapp/wails/v2/pkg/runtime"
)

// previewWindowSeconds is the default length of a preview export clip.
const previewWindowSeconds = 10.0

var videoDialogFilter = []wailsruntime.FileFilter{
	{
		DisplayName: "Video files",
		Pattern:     "*.mp4;*.mov;*.mkv;*.avi;*.m4v;*.webm",
	},
	{
		DisplayName: "All files",
		Pattern:     "*",
	},
}

var subtitleDialogFilter = []wailsruntime.FileFilter{
	{
		DisplayName: "Subtitle files",
		Pattern:     "*.srt;*.vtt",
	},
	{
		DisplayName: "All files",
		Pattern:     "*",
	},
}

// VideoInfo describes a loaded source video for the UI.
type VideoInfo struct {
	Path            string  `json:"path"`
	DurationSeconds float64 `json:"durationSeconds"`
	PlaybackHint    string  `json:"playbackHint,omitempty"`
}

// TrackInfo summarizes a loaded subtitle track for the UI.
type TrackInfo struct {
	Slot     int    `json:"slot"`
	Path     string `json:"path"`
	Format   string `json:"format"`
	CueCount int    `json:"cueCount"`
	Language string `json:"language,omitempty"`
}

// exportSupervisor isolates the encoder process lifecycle behind an
// interface so tests can drive outcomes without spawning ffmpeg.
type exportSupervisor interface {
	Running() bool
	Start(cmd export.Command, tempFiles []string, totalSeconds float64, cb export.Callbacks) error
	Cancel() error
}

// App wires configuration, session state, export jobs, and UI runtime
// callbacks.
type App struct {
	Settings    domain.Settings
	Store       config.Store
	Jobs        *jobs.Manager
	Session     *session.Session
	Diagnostics domain.DiagnosticReport
	Encoder     export.HardwareEncoder

	assets  fs.FS
	checker *diagnostics.Checker

	supervisor exportSupervisor
	build      func(export.Job, export.HardwareEncoder) (export.Command, []string, error)
	probe      func(context.Context, string) float64
	newJobID   func() string

	mu            sync.Mutex
	videoDuration float64
	events        *jobs.EventBus
	runtimeCtx    context.Context
}

// New builds the application with persisted settings and startup diagnostics.
func New() (*App, error) {
	return NewWithAssets(nil)
}

// NewWithAssets builds the application and optionally configures embedded
// frontend assets.
func NewWithAssets(assets fs.FS) (*App, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("resolve user home: %w", err)
	}
	if err := ensureLocalBinOnPATH(homeDir); err != nil {
		return nil, fmt.Errorf("prepare local tool path: %w", err)
	}

	store := config.NewJSONStore(config.DefaultPath())
	settings, err := store.Load()
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	checker := diagnostics.NewChecker()
	report := checker.Run(settings)

	sess := session.New(nil)
	sess.Restore(settings)

	app := &App{
		Settings:    settings,
		Store:       store,
		Jobs:        jobs.NewManager(),
		Session:     sess,
		Diagnostics: report,
		Encoder:     export.DetectHardwareEncoder(context.Background()),
		assets:      assets,
		checker:     checker,
		supervisor:  export.NewSupervisor(),
		build:       export.Build,
		probe:       export.ProbeDuration,
		newJobID:    uuid.NewString,
		events:      jobs.NewEventBus(1000),
	}
	return app, nil
}

// NewForTests builds an App with injectable export dependencies and an
// in-memory configuration.
func NewForTests(
	store config.Store,
	supervisor exportSupervisor,
	build func(export.Job, export.HardwareEncoder) (export.Command, []string, error),
	probe func(context.Context, string) float64,
) (*App, error) {
	settings, err := store.Load()
	if err != nil {
		return nil, err
	}

	sess := session.New(nil)
	sess.Restore(settings)

	jobCounter := 0
	return &App{
		Settings:   settings,
		Store:      store,
		Jobs:       jobs.NewManager(),
		Session:    sess,
		supervisor: supervisor,
		build:      build,
		probe:      probe,
		newJobID: func() string {
			jobCounter++
			return fmt.Sprintf("job-%d", jobCounter)
		},
		events: jobs.NewEventBus(1000),
	}, nil
}

// Run starts the Wails desktop application and binds backend methods.
func (a *App) Run() error {
	assetOptions := &assetserver.Options{}
	if a.assets != nil {
		assetOptions.Assets = a.assets
	} else {
		assetOptions.Handler = http.FileServer(http.Dir("./frontend"))
	}

	return wails.Run(&options.App{
		Title:       "Dual Subtitle Burner",
		Width:       1280,
		Height:      820,
		AssetServer: assetOptions,
		OnStartup:   a.Startup,
		OnShutdown: func(ctx context.Context) {
			a.mu.Lock()
			defer a.mu.Unlock()
			a.runtimeCtx = nil
		},
		Bind: []interface{}{a},
	})
}

// Startup stores Wails runtime context for push events.
func (a *App) Startup(ctx context.Context) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.runtimeCtx = ctx
}

// GetDiagnostics returns the latest cached diagnostics report.
func (a *App) GetDiagnostics() domain.DiagnosticReport {
	return a.Diagnostics
}

// RefreshDiagnostics reloads settings and reruns dependency checks.
func (a *App) RefreshDiagnostics() (domain.DiagnosticReport, error) {
	settings, err := a.Store.Load()
	if err != nil {
		return domain.DiagnosticReport{}, fmt.Errorf("load settings: %w", err)
	}

	a.Settings = settings
	a.Diagnostics = a.checker.Run(settings)
	return a.Diagnostics, nil
}

// GetSettings loads and returns the latest persisted settings.
func (a *App) GetSettings() (domain.Settings, error) {
	settings, err := a.Store.Load()
	if err != nil {
		return domain.Settings{}, fmt.Errorf("load settings: %w", err)
	}

	a.mu.Lock()
	a.Settings = settings
	a.mu.Unlock()

	return settings, nil
}

// SaveSettings normalizes and persists settings, applies them to the
// session, then refreshes diagnostics.
func (a *App) SaveSettings(settings domain.Settings) (domain.Settings, error) {
	normalized := normalizeSettings(settings)
	if err := a.Store.Save(normalized); err != nil {
		return domain.Settings{}, fmt.Errorf("save settings: %w", err)
	}

	a.mu.Lock()
	a.Settings = normalized
	a.Session.Restore(normalized)
	if a.checker != nil {
		a.Diagnostics = a.checker.Run(normalized)
	}
	a.mu.Unlock()

	return normalized, nil
}

// LoadVideo binds a source video to the session, probing its duration so
// exports can report progress. The returned hint warns about containers
// the embedded preview may refuse to play; export accepts them regardless.
func (a *App) LoadVideo(path string) (VideoInfo, error) {
	p := strings.TrimSpace(path)
	if p == "" {
		return VideoInfo{}, fmt.Errorf("video path is empty")
	}

	info, err := os.Stat(p)
	if err != nil {
		return VideoInfo{}, fmt.Errorf("video file not found: %s", p)
	}
	if info.IsDir() {
		return VideoInfo{}, fmt.Errorf("video path is a directory: %s", p)
	}

	duration := a.probe(context.Background(), p)

	a.mu.Lock()
	a.Session.VideoPath = p
	a.videoDuration = duration
	a.mu.Unlock()

	return VideoInfo{
		Path:            p,
		DurationSeconds: duration,
		PlaybackHint:    playbackHint(p),
	}, nil
}

// LoadSubtitle parses a subtitle file into the given slot (1 or 2).
func (a *App) LoadSubtitle(slot int, path string) (TrackInfo, error) {
	trackSlot, err := slotFromInt(slot)
	if err != nil {
		return TrackInfo{}, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	track, err := a.Session.LoadTrack(trackSlot, strings.TrimSpace(path))
	if err != nil {
		return TrackInfo{}, err
	}

	return TrackInfo{
		Slot:     slot,
		Path:     strings.TrimSpace(path),
		Format:   track.Format,
		CueCount: len(track.Cues),
		Language: languageName(track.Language),
	}, nil
}

// ConfigureSubtitleStyle applies a style edit to a slot and persists it.
func (a *App) ConfigureSubtitleStyle(slot int, style domain.Style) (domain.Style, error) {
	trackSlot, err := slotFromInt(slot)
	if err != nil {
		return domain.Style{}, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	applied, err := a.Session.ApplyStyleEdit(trackSlot, style)
	if err != nil {
		return domain.Style{}, err
	}

	if trackSlot == domain.SlotPrimary {
		a.Settings.Style1 = applied
	} else {
		a.Settings.Style2 = applied
	}
	if err := a.Store.Save(a.Settings); err != nil {
		return domain.Style{}, fmt.Errorf("persist style: %w", err)
	}
	return applied, nil
}

// SetPreset switches the active preset and persists the resulting styles.
func (a *App) SetPreset(preset string) (domain.Settings, error) {
	parsed, err := parsePreset(preset)
	if err != nil {
		return domain.Settings{}, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	a.Session.SetPreset(parsed)
	a.Settings.Preset = parsed
	a.Settings.Style1 = a.Session.Style(domain.SlotPrimary)
	a.Settings.Style2 = a.Session.Style(domain.SlotSecondary)
	if err := a.Store.Save(a.Settings); err != nil {
		return domain.Settings{}, fmt.Errorf("persist preset: %w", err)
	}
	return a.Settings, nil
}

// OverlaysAt returns the positioned subtitle blocks visible at a playback
// position, laid out for the given viewport. Called on every position
// update from the UI.
func (a *App) OverlaysAt(positionMs int64, viewportWidth, viewportHeight float64) []session.Overlay {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.Session.OverlaysAt(positionMs, viewportWidth, viewportHeight)
}

// StartExport validates the session and launches a full-length burn-in
// export as a background job. A second export while one runs is rejected.
func (a *App) StartExport(outputPath string) (domain.Job, error) {
	a.mu.Lock()
	if a.Session.VideoPath == "" {
		a.mu.Unlock()
		return domain.Job{}, fmt.Errorf("load a video before exporting")
	}
	if err := a.Session.ValidateForExport(); err != nil {
		a.mu.Unlock()
		return domain.Job{}, err
	}

	out := strings.TrimSpace(outputPath)
	if out == "" {
		out = filepath.Join(a.Settings.OutputDir, deriveOutputName(a.Session.VideoPath))
	}

	job := export.Job{
		VideoPath:  a.Session.VideoPath,
		Track1:     a.Session.Track(domain.SlotPrimary),
		Track2:     a.Session.Track(domain.SlotSecondary),
		Style1:     a.Session.Style(domain.SlotPrimary),
		Style2:     a.Session.Style(domain.SlotSecondary),
		OutputPath: out,
	}
	total := a.videoDuration
	a.mu.Unlock()

	return a.startExportJob(job, total)
}

// StartPreviewExport burns a short clip starting at the given playback
// position, so style changes can be checked without a full encode. Cue
// times are rebased onto the clip window.
func (a *App) StartPreviewExport(positionMs int64) (domain.Job, error) {
	if positionMs < 0 {
		positionMs = 0
	}

	a.mu.Lock()
	if a.Session.VideoPath == "" {
		a.mu.Unlock()
		return domain.Job{}, fmt.Errorf("load a video before previewing")
	}
	if err := a.Session.ValidateForExport(); err != nil {
		a.mu.Unlock()
		return domain.Job{}, err
	}

	start := float64(positionMs) / 1000
	duration := previewWindowSeconds
	if a.videoDuration > 0 {
		if start >= a.videoDuration {
			a.mu.Unlock()
			return domain.Job{}, fmt.Errorf("preview position is past the end of the video")
		}
		if start+duration > a.videoDuration {
			duration = a.videoDuration - start
		}
	}
	durationMs := int64(duration * 1000)

	job := export.Job{
		VideoPath:  a.Session.VideoPath,
		Track1:     subtitles.ClipForWindow(a.Session.Track(domain.SlotPrimary), positionMs, durationMs),
		Track2:     subtitles.ClipForWindow(a.Session.Track(domain.SlotSecondary), positionMs, durationMs),
		Style1:     a.Session.Style(domain.SlotPrimary),
		Style2:     a.Session.Style(domain.SlotSecondary),
		Clip:       &export.Window{StartSeconds: start, DurationSeconds: duration},
		OutputPath: filepath.Join(a.Settings.OutputDir, "preview.mp4"),
	}
	a.mu.Unlock()

	return a.startExportJob(job, duration)
}

// CancelExport kills the running export process, if any. The terminal
// cancelled event arrives once the process has exited and temp files are
// cleaned up.
func (a *App) CancelExport() error {
	if err := a.supervisor.Cancel(); err != nil {
		if errors.Is(err, export.ErrNoActiveExport) {
			return jobs.ErrNoRunningJob
		}
		return err
	}

	current := a.Jobs.Current()
	a.publishStatus(current.ID, domain.JobStatusRunning, "Cancellation requested")
	return nil
}

// CurrentJob returns current job metadata and status.
func (a *App) CurrentJob() domain.Job {
	return a.Jobs.Current()
}

// JobEvents returns all events with sequence greater than sinceSeq.
func (a *App) JobEvents(sinceSeq int64) []jobs.Event {
	return a.events.Since(sinceSeq)
}

// startExportJob registers the job, builds the encoder invocation, and
// hands the process to the supervisor. Temp subtitle files belong to the
// supervisor from the moment Start succeeds.
func (a *App) startExportJob(job export.Job, totalSeconds float64) (domain.Job, error) {
	jobID := a.newJobID()
	if err := a.Jobs.Start(jobID, job.OutputPath); err != nil {
		return domain.Job{}, err
	}

	encoder := a.Encoder
	cmd, tempFiles, err := a.build(job, encoder)
	if err != nil {
		_ = a.Jobs.Transition(domain.JobStatusFailed)
		a.publishEvent(jobs.Event{
			JobID:   jobID,
			Type:    jobs.EventTypeError,
			Status:  domain.JobStatusFailed,
			Message: err.Error(),
		})
		return domain.Job{}, err
	}

	a.publishEvent(jobs.Event{
		JobID:      jobID,
		Type:       jobs.EventTypeStatus,
		Status:     domain.JobStatusRunning,
		Message:    "Export started",
		Command:    cmd.String(),
		OutputPath: job.OutputPath,
	})

	err = a.supervisor.Start(cmd, tempFiles, totalSeconds, export.Callbacks{
		OnProgress: func(percent float64) {
			a.publishEvent(jobs.Event{
				JobID:   jobID,
				Type:    jobs.EventTypeProgress,
				Status:  domain.JobStatusRunning,
				Percent: percent,
			})
		},
		OnFinished: func(outcome export.Outcome, finishErr error) {
			a.finishExportJob(jobID, job.OutputPath, outcome, finishErr)
		},
	})
	if err != nil {
		_ = a.Jobs.Transition(domain.JobStatusFailed)
		a.publishEvent(jobs.Event{
			JobID:   jobID,
			Type:    jobs.EventTypeError,
			Status:  domain.JobStatusFailed,
			Message: err.Error(),
		})
		return domain.Job{}, err
	}

	return a.Jobs.Current(), nil
}

// finishExportJob maps the supervisor outcome onto the job state machine
// and publishes the single terminal event.
func (a *App) finishExportJob(jobID, outputPath string, outcome export.Outcome, err error) {
	switch outcome {
	case export.OutcomeCancelled:
		_ = a.Jobs.Transition(domain.JobStatusCancelled)
		a.publishStatus(jobID, domain.JobStatusCancelled, "Export cancelled")
	case export.OutcomeFailed:
		_ = a.Jobs.Transition(domain.JobStatusFailed)
		message := "Export failed"
		if err != nil {
			message = fmt.Sprintf("Export failed: %v", err)
		}
		a.publishEvent(jobs.Event{
			JobID:   jobID,
			Type:    jobs.EventTypeError,
			Status:  domain.JobStatusFailed,
			Message: message,
		})
	default:
		_ = a.Jobs.Transition(domain.JobStatusSucceeded)
		a.publishEvent(jobs.Event{
			JobID:      jobID,
			Type:       jobs.EventTypeResult,
			Status:     domain.JobStatusSucceeded,
			Message:    "Export finished",
			OutputPath: outputPath,
		})
	}
}

// PickVideoFile opens a native file dialog for video selection.
func (a *App) PickVideoFile() (string, error) {
	ctx, err := a.runtimeContext()
	if err != nil {
		return "", err
	}

	path, err := wailsruntime.OpenFileDialog(ctx, wailsruntime.OpenDialogOptions{
		Title:   "Select video file",
		Filters: videoDialogFilter,
	})
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(path), nil
}

// PickSubtitleFile opens a native file dialog for subtitle selection.
func (a *App) PickSubtitleFile() (string, error) {
	ctx, err := a.runtimeContext()
	if err != nil {
		return "", err
	}

	path, err := wailsruntime.OpenFileDialog(ctx, wailsruntime.OpenDialogOptions{
		Title:   "Select subtitle file",
		Filters: subtitleDialogFilter,
	})
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(path), nil
}

// PickOutputFile opens a native save dialog for the export destination.
func (a *App) PickOutputFile() (string, error) {
	ctx, err := a.runtimeContext()
	if err != nil {
		return "", err
	}

	a.mu.Lock()
	defaultName := "output.mp4"
	if a.Session.VideoPath != "" {
		defaultName = deriveOutputName(a.Session.VideoPath)
	}
	defaultDir := a.Settings.OutputDir
	a.mu.Unlock()

	path, err := wailsruntime.SaveFileDialog(ctx, wailsruntime.SaveDialogOptions{
		Title:            "Save exported video",
		DefaultDirectory: defaultDir,
		DefaultFilename:  defaultName,
		Filters: []wailsruntime.FileFilter{
			{DisplayName: "MP4 video", Pattern: "*.mp4"},
		},
	})
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(path), nil
}

// PickOutputDirectory opens a native directory picker for exports.
func (a *App) PickOutputDirectory() (string, error) {
	ctx, err := a.runtimeContext()
	if err != nil {
		return "", err
	}

	path, err := wailsruntime.OpenDirectoryDialog(ctx, wailsruntime.OpenDialogOptions{
		Title: "Select output directory",
	})
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(path), nil
}

// OpenOutputFolder opens the given path (or configured output dir) in the
// platform file manager.
func (a *App) OpenOutputFolder(path string) error {
	target := strings.TrimSpace(path)
	if target == "" {
		a.mu.Lock()
		target = a.Settings.OutputDir
		a.mu.Unlock()
	}
	if target == "" {
		return fmt.Errorf("output path is empty")
	}

	info, err := os.Stat(target)
	if err != nil {
		return fmt.Errorf("resolve output path: %w", err)
	}

	openPath := target
	if !info.IsDir() {
		openPath = filepath.Dir(target)
	}

	return openInFileManager(openPath)
}

// publishStatus sends a normalized status event.
func (a *App) publishStatus(jobID string, status domain.JobStatus, message string) {
	a.publishEvent(jobs.Event{
		JobID:   jobID,
		Type:    jobs.EventTypeStatus,
		Status:  status,
		Message: message,
	})
}

// publishEvent stores event history and emits runtime push notifications.
func (a *App) publishEvent(event jobs.Event) {
	published := a.events.Publish(event)

	a.mu.Lock()
	ctx := a.runtimeCtx
	a.mu.Unlock()
	if ctx != nil {
		wailsruntime.EventsEmit(ctx, "export:event", published)
	}
}

// runtimeContext returns current Wails runtime context for dialog APIs.
func (a *App) runtimeContext() (context.Context, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.runtimeCtx == nil {
		return nil, fmt.Errorf("runtime context is not initialized")
	}
	return a.runtimeCtx, nil
}

// slotFromInt validates a UI slot number.
func slotFromInt(slot int) (domain.TrackSlot, error) {
	switch slot {
	case 1:
		return domain.SlotPrimary, nil
	case 2:
		return domain.SlotSecondary, nil
	default:
		return 0, fmt.Errorf("invalid subtitle slot: %d", slot)
	}
}

// parsePreset validates a UI preset identifier.
func parsePreset(preset string) (domain.Preset, error) {
	switch domain.Preset(strings.TrimSpace(preset)) {
	case domain.PresetNone, "":
		return domain.PresetNone, nil
	case domain.PresetPrimaryOnly:
		return domain.PresetPrimaryOnly, nil
	case domain.PresetSecondaryOnly:
		return domain.PresetSecondaryOnly, nil
	default:
		return "", fmt.Errorf("unknown preset: %s", preset)
	}
}

// languageName renders a detected track language for display, or empty
// when detection was inconclusive.
func languageName(tag language.Tag) string {
	if tag == language.Und {
		return ""
	}
	return display.English.Languages().Name(tag)
}

// playbackHint flags containers the embedded web view typically cannot
// decode. The export path runs through ffmpeg and is unaffected.
func playbackHint(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp4", ".m4v", ".mov", ".webm":
		return ""
	default:
		return "This container may not play in the built-in preview. Export still works."
	}
}

// deriveOutputName appends a suffix to the source file name.
func deriveOutputName(videoPath string) string {
	base := filepath.Base(videoPath)
	ext := filepath.Ext(base)
	return strings.TrimSuffix(base, ext) + "_subtitled.mp4"
}

// normalizeSettings trims user inputs and clamps style values.
func normalizeSettings(settings domain.Settings) domain.Settings {
	settings.OutputDir = strings.TrimSpace(settings.OutputDir)
	settings.Style1 = session.NormalizeStyle(settings.Style1)
	settings.Style2 = session.NormalizeStyle(settings.Style2)
	if settings.Preset == "" {
		settings.Preset = domain.PresetNone
	}
	return settings
}

// openInFileManager launches the platform file explorer for the provided path.
func openInFileManager(path string) error {
	var cmd *exec.Cmd
	switch goruntime.GOOS {
	case "darwin":
		cmd = exec.Command("open", path)
	case "windows":
		cmd = exec.Command("explorer", filepath.Clean(path))
	default:
		cmd = exec.Command("xdg-open", path)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("launch file manager: %w", err)
	}
	return nil
}
