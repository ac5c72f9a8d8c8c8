package windows

import (
	"os"
	"path/filepath"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"dataviz/ingest"
)

// UploadDialog browses the local file system for a data file the normalizer
// understands. The selected file is read and handed to the callback together
// with its base name.
type UploadDialog struct {
	dialog      dialog.Dialog
	window      fyne.Window
	callback    func(name string, data []byte, err error)
	fileList    *widget.List
	entries     []os.DirEntry
	homeDir     string
	currentPath string
	pathLabel   *widget.Label
}

func NewUploadDialog(w fyne.Window, startDir string, callback func(string, []byte, error)) *UploadDialog {
	ud := &UploadDialog{
		window:   w,
		callback: callback,
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}
	ud.homeDir = homeDir
	ud.currentPath = homeDir
	if info, err := os.Stat(startDir); err == nil && info.IsDir() {
		ud.currentPath = startDir
	}
	return ud
}

// CurrentDir is the directory the dialog was last showing.
func (ud *UploadDialog) CurrentDir() string {
	return ud.currentPath
}

func (ud *UploadDialog) Show() {
	ud.pathLabel = widget.NewLabel(ud.currentPath)
	ud.pathLabel.Truncation = fyne.TextTruncateEllipsis
	ud.pathLabel.TextStyle = fyne.TextStyle{Bold: true}

	ud.fileList = widget.NewList(
		func() int {
			return len(ud.entries)
		},
		func() fyne.CanvasObject {
			return container.NewHBox(widget.NewIcon(theme.FileIcon()), widget.NewLabel("template"))
		},
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			cont := obj.(*fyne.Container)
			icon := cont.Objects[0].(*widget.Icon)
			label := cont.Objects[1].(*widget.Label)

			entry := ud.entries[id]
			label.SetText(entry.Name())
			switch {
			case entry.IsDir():
				icon.SetResource(theme.FolderIcon())
			case ingest.DetectFileType(entry.Name()) == ingest.FileTypeSpreadsheet:
				icon.SetResource(theme.GridIcon())
			default:
				icon.SetResource(theme.DocumentIcon())
			}
		},
	)

	ud.fileList.OnSelected = func(id widget.ListItemID) {
		entry := ud.entries[id]
		fullPath := filepath.Join(ud.currentPath, entry.Name())

		if entry.IsDir() {
			ud.currentPath = fullPath
			ud.loadDirectory()
			ud.fileList.UnselectAll()
			return
		}

		content, err := os.ReadFile(fullPath)
		ud.dialog.Hide()
		if err != nil {
			ud.callback(entry.Name(), nil, err)
			return
		}
		ud.callback(entry.Name(), content, nil)
	}

	homeButton := widget.NewButtonWithIcon("Home", theme.HomeIcon(), func() {
		ud.currentPath = ud.homeDir
		ud.loadDirectory()
	})
	upButton := widget.NewButtonWithIcon("Up", theme.NavigateBackIcon(), func() {
		parent := filepath.Dir(ud.currentPath)
		if parent != ud.currentPath {
			ud.currentPath = parent
			ud.loadDirectory()
		}
	})
	refreshButton := widget.NewButtonWithIcon("Refresh", theme.ViewRefreshIcon(), ud.loadDirectory)

	filterInfo := widget.NewLabel("Showing: " + strings.Join(ingest.Extensions(), ", ") + " files, and directories")
	filterInfo.TextStyle = fyne.TextStyle{Italic: true}

	navToolbar := container.NewBorder(
		nil, nil,
		container.NewHBox(homeButton, upButton, refreshButton),
		nil,
		ud.pathLabel,
	)

	instructions := widget.NewRichTextFromMarkdown("**Select a data file to upload**\n\nClick a folder to open it, or a file to load it.")
	instructions.Wrapping = fyne.TextWrapWord

	content := container.NewBorder(
		container.NewVBox(
			instructions,
			widget.NewSeparator(),
			navToolbar,
			widget.NewSeparator(),
			filterInfo,
		),
		nil, nil, nil,
		ud.fileList,
	)

	ud.dialog = dialog.NewCustom("Upload Data File", "Close", content, ud.window)
	ud.dialog.Resize(fyne.NewSize(800, 600))
	ud.loadDirectory()
	ud.dialog.Show()
}

func (ud *UploadDialog) loadDirectory() {
	entries, err := os.ReadDir(ud.currentPath)
	if err != nil {
		dialog.ShowError(err, ud.window)
		return
	}

	var dirs, files []os.DirEntry
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		if entry.IsDir() {
			dirs = append(dirs, entry)
		} else if ingest.DetectFileType(name) != ingest.FileTypeUnknown {
			files = append(files, entry)
		}
	}
	ud.entries = append(dirs, files...)

	ud.pathLabel.SetText(ud.currentPath)
	ud.fileList.UnselectAll()
	ud.fileList.Refresh()
}
