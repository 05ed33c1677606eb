package distro

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/ini.v1"
	"gopkg.in/yaml.v2"
)

// Marker files checked during flavor detection.
const (
	overrideFile    = "distro.yaml"
	debianInfoFile  = ".disk/info"
	ubuntuDefsFile  = "README.diskdefines"
	redhatTreeInfo  = ".treeinfo"
	maxMarkerLength = 64 * 1024
)

var (
	debianInfoRegex  = regexp.MustCompile(`^(.+)\s(\d[\d.]*)`)
	diskDefinesRegex = regexp.MustCompile(`^\s*#define\s+(\w+)\s+(.+?)\s*$`)
)

// Detector identifies the flavor and release metadata of a distro tree
// from its marker files. Detection is repeated on every lookup; the
// probes are a handful of stats and small reads.
type Detector struct{}

// NewDetector creates a new Detector.
func NewDetector() *Detector {
	return &Detector{}
}

// Detect fills in the flavor, release metadata and architecture of d.
// A distro.yaml override takes priority; otherwise the most specific
// flavor whose marker files are present wins. Trees with no markers stay
// FlavorUnknown, which is valid.
func (dt *Detector) Detect(d *Distro) error {
	if ok, err := dt.detectOverride(d); ok || err != nil {
		return err
	}
	if ok, err := dt.detectUbuntu(d); ok || err != nil {
		return err
	}
	if ok, err := dt.detectDebian(d); ok || err != nil {
		return err
	}
	if ok, err := dt.detectRedHat(d); ok || err != nil {
		return err
	}
	return nil
}

// detectOverride loads distro.yaml when present.
func (dt *Detector) detectOverride(d *Distro) (bool, error) {
	data, ok, err := readMarker(d.Path, overrideFile)
	if !ok || err != nil {
		return false, err
	}

	boot := &BootOverride{}
	if err := yaml.Unmarshal(data, boot); err != nil {
		return false, fmt.Errorf("invalid %s: %w", overrideFile, err)
	}

	d.Flavor = FlavorCustom
	d.Boot = boot
	d.ReleaseName = boot.Name
	d.ReleaseVersion = boot.Version
	return true, nil
}

// detectUbuntu recognizes Ubuntu media by README.diskdefines and refines
// the flavor by the presence of the netboot or casper trees.
func (dt *Detector) detectUbuntu(d *Distro) (bool, error) {
	data, ok, err := readMarker(d.Path, ubuntuDefsFile)
	if !ok || err != nil {
		return false, err
	}

	defs := parseDiskDefines(string(data))
	diskname := defs["DISKNAME"]
	if name, version, found := strings.Cut(diskname, " "); found {
		d.ReleaseName = name
		d.ReleaseVersion = version
	} else {
		d.ReleaseName = diskname
	}
	d.Arch = defs["ARCH"]

	switch {
	case isDir(filepath.Join(d.Path, "install", "netboot")):
		d.Flavor = FlavorUbuntuNetboot
	case isDir(filepath.Join(d.Path, "casper")):
		d.Flavor = FlavorUbuntuLive
	default:
		d.Flavor = FlavorUbuntu
	}
	return true, nil
}

// detectDebian recognizes Debian media by .disk/info.
func (dt *Detector) detectDebian(d *Distro) (bool, error) {
	data, ok, err := readMarker(d.Path, debianInfoFile)
	if !ok || err != nil {
		return false, err
	}

	if m := debianInfoRegex.FindStringSubmatch(strings.TrimSpace(string(data))); m != nil {
		d.ReleaseName = m[1]
		d.ReleaseVersion = m[2]
	}

	if isDir(filepath.Join(d.Path, "live")) {
		d.Flavor = FlavorDebianLive
	} else {
		d.Flavor = FlavorDebian
	}
	return true, nil
}

// detectRedHat recognizes Red Hat family media by the .treeinfo INI file.
// Release name and version come from the [release] section, with the
// older [general] family/version layout as fallback.
func (dt *Detector) detectRedHat(d *Distro) (bool, error) {
	data, ok, err := readMarker(d.Path, redhatTreeInfo)
	if !ok || err != nil {
		return false, err
	}

	info, err := ini.Load(data)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", redhatTreeInfo, err)
	}

	d.Flavor = FlavorRedHat
	if sec, err := info.GetSection("release"); err == nil {
		d.ReleaseName = sec.Key("name").String()
		d.ReleaseVersion = sec.Key("version").String()
	} else if sec, err := info.GetSection("general"); err == nil {
		d.ReleaseName = sec.Key("family").String()
		d.ReleaseVersion = sec.Key("version").String()
	}
	if sec, err := info.GetSection("general"); err == nil && d.Arch == "" {
		d.Arch = sec.Key("arch").String()
	}
	return true, nil
}

// parseDiskDefines extracts the #define key/value pairs from an Ubuntu
// README.diskdefines file.
func parseDiskDefines(content string) map[string]string {
	defs := map[string]string{}
	for _, line := range strings.Split(content, "\n") {
		if m := diskDefinesRegex.FindStringSubmatch(line); m != nil {
			defs[m[1]] = m[2]
		}
	}
	return defs
}

// readMarker reads a small marker file below root. Returns ok=false when
// the file does not exist; other failures are reported.
func readMarker(root, rel string) ([]byte, bool, error) {
	path := filepath.Join(root, rel)
	fi, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	if fi.IsDir() || fi.Size() > maxMarkerLength {
		return nil, false, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

func isDir(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && fi.IsDir()
}
