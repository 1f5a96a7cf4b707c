package distro

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"
)

const ubuntuRelease = `PRETTY_NAME="Ubuntu 22.04.4 LTS"
NAME="Ubuntu"
VERSION_ID="22.04"
VERSION="22.04.4 LTS (Jammy Jellyfish)"
VERSION_CODENAME=jammy
ID=ubuntu
ID_LIKE=debian
HOME_URL="https://www.ubuntu.com/"
`

// DistroTestSuite tests os-release parsing
type DistroTestSuite struct {
	suite.Suite
	tempDir string
}

func (s *DistroTestSuite) SetupTest() {
	s.tempDir = s.T().TempDir()
}

func (s *DistroTestSuite) writeRelease(content string) string {
	path := filepath.Join(s.tempDir, "os-release")
	s.Require().NoError(os.WriteFile(path, []byte(content), 0o600))
	return path
}

func (s *DistroTestSuite) TestReadParsed() {
	result := Read(s.writeRelease(ubuntuRelease))

	s.Require().True(result.Parsed())
	s.NoError(result.Reason)
	s.Equal("Ubuntu", result.Info.Name)
	s.Equal("22.04.4 LTS (Jammy Jellyfish)", result.Info.Version)
	s.Equal("ubuntu", result.Info.ID)
	s.Equal("Ubuntu 22.04.4 LTS", result.Info.PrettyName)
}

func (s *DistroTestSuite) TestReadMissingFile() {
	path := filepath.Join(s.tempDir, "missing")
	result := Read(path)

	s.False(result.Parsed())
	s.Error(result.Reason)
	s.True(os.IsNotExist(result.Reason))
	s.Equal("Could not read "+path, result.Value())
}

func (s *DistroTestSuite) TestSentinelForDefaultPath() {
	result := Result{Path: DefaultPath}
	s.Equal("Could not read /etc/os-release", result.Sentinel())
}

func (s *DistroTestSuite) TestMissingKeysDefaultToUnknown() {
	result := Read(s.writeRelease("ID=alpine\n"))

	s.Require().True(result.Parsed())
	s.Equal("alpine", result.Info.ID)
	s.Equal("Unknown", result.Info.Name)
	s.Equal("Unknown", result.Info.Version)
	s.Equal("Unknown", result.Info.PrettyName)
}

func (s *DistroTestSuite) TestEmptyFileIsParsed() {
	result := Read(s.writeRelease(""))

	s.Require().True(result.Parsed())
	s.Equal("Unknown", result.Info.Name)
}

func (s *DistroTestSuite) TestParseSplitsOnFirstEquals() {
	fields, err := Parse(strings.NewReader(`BUG_REPORT_URL="https://example.com/?a=b"`))

	s.Require().NoError(err)
	s.Equal("https://example.com/?a=b", fields["BUG_REPORT_URL"])
}

func (s *DistroTestSuite) TestParseLastOccurrenceWins() {
	fields, err := Parse(strings.NewReader("NAME=first\nNAME=\"second\"\n"))

	s.Require().NoError(err)
	s.Equal("second", fields["NAME"])
}

func (s *DistroTestSuite) TestParseSkipsJunk() {
	input := "# comment\n\nNOEQUALS\n=value\nEMPTY=\nEMPTYQUOTED=\"\"\r\nID=debian\r\n"
	fields, err := Parse(strings.NewReader(input))

	s.Require().NoError(err)
	s.Equal(map[string]string{"ID": "debian"}, fields)
}

func (s *DistroTestSuite) TestMarshalParsed() {
	result := Read(s.writeRelease(ubuntuRelease))

	data, err := json.Marshal(result)
	s.Require().NoError(err)

	var decoded map[string]string
	s.Require().NoError(json.Unmarshal(data, &decoded))
	s.Equal("Ubuntu", decoded["name"])
	s.Equal("ubuntu", decoded["id"])
	s.Equal("Ubuntu 22.04.4 LTS", decoded["prettyName"])
	s.Contains(decoded, "version")
}

func (s *DistroTestSuite) TestMarshalUnavailable() {
	result := Read(filepath.Join(s.tempDir, "nope"))

	data, err := json.Marshal(result)
	s.Require().NoError(err)

	var decoded string
	s.Require().NoError(json.Unmarshal(data, &decoded))
	s.True(strings.HasPrefix(decoded, "Could not read "))
}

func TestDistroSuite(t *testing.T) {
	suite.Run(t, new(DistroTestSuite))
}
