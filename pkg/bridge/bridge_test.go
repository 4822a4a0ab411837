package bridge

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/kittclouds/rolodex/internal/config"
	"github.com/kittclouds/rolodex/internal/errs"
	"github.com/kittclouds/rolodex/internal/logging"
	"github.com/kittclouds/rolodex/internal/store"
)

type BridgeTestSuite struct {
	suite.Suite
	core *Core
	logs *bytes.Buffer
}

func (self *BridgeTestSuite) SetupTest() {
	self.logs = &bytes.Buffer{}
	logger, err := logging.NewWithOutput(config.Logging{Level: "debug"}, self.logs)
	self.Require().NoError(err)

	self.core = ConnectDSN(":memory:", logger)
	self.Require().NotNil(self.core)
}

func (self *BridgeTestSuite) TearDownTest() {
	self.core.Close()
}

func (self *BridgeTestSuite) tableNames() []string {
	names := []string{}
	for _, t := range self.core.ListTables() {
		names = append(names, t.Name)
	}
	return names
}

func (self *BridgeTestSuite) TestCreateListDrop() {
	self.True(self.core.EnsureRegistry())
	self.True(self.core.CreateTable("Family"))
	self.Nil(self.core.LastError())
	self.Equal([]string{"Family"}, self.tableNames())

	self.True(self.core.DropPhysicalTable("Family"))
	self.Empty(self.tableNames())
	self.NotNil(self.core.ListTables())
}

func (self *BridgeTestSuite) TestSplitRegisterAndCreate() {
	self.True(self.core.RegisterTable("Work"))
	self.True(self.core.CreatePhysicalTable("Work"))
	self.True(self.core.InsertRecord("Work", store.ContactFields{Name: "Ann"}))
	self.Len(self.core.FetchRecords("Work"), 1)

	self.True(self.core.UnregisterTable("Work"))
	self.Empty(self.tableNames())
}

func (self *BridgeTestSuite) TestFailuresAreClassified() {
	self.False(self.core.CreateTable("DROP"))
	self.Equal(errs.ErrInvalidIdentifier, self.core.LastError())
	self.Contains(self.logs.String(), "create_table rejected")

	self.True(self.core.CreateTable("x"))
	self.Nil(self.core.LastError())

	self.False(self.core.CreateTable("x"))
	self.Equal(errs.ErrDuplicateName, self.core.LastError())

	self.Empty(self.core.FetchRecords("ghost"))
	self.Equal(errs.ErrStorageFailure, self.core.LastError())
	self.Contains(self.logs.String(), "fetch_records failed")

	self.Empty(self.core.Combine([]string{"x"}))
	self.Equal(errs.ErrInsufficientSelection, self.core.LastError())

	self.Empty(self.core.Search("a", []string{"x"}, "phone"))
	self.Equal(errs.ErrInvalidField, self.core.LastError())
}

func (self *BridgeTestSuite) TestRecordLifecycle() {
	self.Require().True(self.core.CreateTable("Friends"))

	id, ok := self.core.InsertRecordID("Friends", store.ContactFields{Name: "Bo", Email: "bo@example.com"})
	self.Require().True(ok)

	rec := self.core.GetRecord("Friends", id)
	self.Require().NotNil(rec)
	self.Equal("bo@example.com", rec.Email)

	fields := rec.ContactFields
	fields.Relationship = "neighbour"
	self.True(self.core.UpdateRecord("Friends", id, fields))
	self.Equal("neighbour", self.core.GetRecord("Friends", id).Relationship)
	self.Equal(1, self.core.CountRecords("Friends"))

	self.True(self.core.DeleteRecord("Friends", id))
	self.Nil(self.core.GetRecord("Friends", id))
	self.Nil(self.core.LastError())

	// Missing ids are silent no-ops.
	self.True(self.core.DeleteRecord("Friends", id))
	self.True(self.core.UpdateRecord("Friends", 999, fields))

	self.Equal(-1, self.core.CountRecords("nope"))
}

func (self *BridgeTestSuite) TestCreationDate() {
	self.Require().True(self.core.CreateTable("Gym"))

	date := self.core.GetCreationDate("Gym")
	_, err := time.Parse(time.RFC3339, date)
	self.NoError(err, date)

	self.Equal(UnknownDate, self.core.GetCreationDate("Nope"))
	self.Nil(self.core.LastError())

	_, ok := self.core.CreationTime("Nope")
	self.False(ok)
}

func (self *BridgeTestSuite) TestCombineAndSearch() {
	self.Require().True(self.core.CreateTable("A"))
	self.Require().True(self.core.CreateTable("B"))
	self.Require().True(self.core.InsertRecord("A", store.ContactFields{Name: "Bob", Relationship: "uncle"}))
	self.Require().True(self.core.InsertRecord("B", store.ContactFields{Name: "Amy", Relationship: "aunt"}))

	rows := self.core.Combine([]string{"B", "A"})
	self.Require().Len(rows, 2)
	self.Equal("Amy", rows[0].Name)
	self.Equal("B", rows[0].SourceTable)
	self.Equal("Bob", rows[1].Name)

	found := self.core.Search("unc", []string{"A", "B"}, "relationship")
	self.Require().Len(found, 1)
	self.Equal("Bob", found[0].Name)

	found = self.core.Search("a", []string{"B", "missing", "A"}, "")
	self.Len(found, 1)
	self.Equal("Amy", found[0].Name)
	self.Nil(self.core.LastError())
}

func (self *BridgeTestSuite) TestMentions() {
	self.Require().True(self.core.CreateTable("Family"))
	self.Require().True(self.core.CreateTable("Work"))
	self.Require().True(self.core.InsertRecord("Family", store.ContactFields{Name: "Maria Lopez"}))
	self.Require().True(self.core.InsertRecord("Work", store.ContactFields{
		Name:       "Tom",
		OtherNotes: "Introduced by Maria Lopez at the offsite.",
	}))

	links := self.core.Mentions([]string{"Family", "Work", "bad name"})
	self.Require().Len(links, 1)
	self.Equal("Tom", links[0].From.Name)
	self.Equal("Family", links[0].To.Table)
	self.Equal("Maria Lopez", links[0].Matched)
}

func (self *BridgeTestSuite) TestExportImport() {
	self.Require().True(self.core.CreateTable("Family"))
	self.Require().True(self.core.InsertRecord("Family", store.ContactFields{Name: "Mom"}))

	data := self.core.Export()
	self.Require().NotEmpty(data)

	self.Require().True(self.core.DropPhysicalTable("Family"))
	self.True(self.core.Import(data))
	self.Equal([]string{"Family"}, self.tableNames())
	self.Len(self.core.FetchRecords("Family"), 1)

	self.False(self.core.Import([]byte(`{"tables":[{"name":"1bad"}]}`)))
	self.Equal(errs.ErrInvalidIdentifier, self.core.LastError())
}

func (self *BridgeTestSuite) TestEngineInfo() {
	info := self.core.EngineInfo()
	self.Require().NotNil(info)
	self.NotEmpty(info.SQLite)
}

func (self *BridgeTestSuite) TestClosedCoreFailsQuietly() {
	self.core.Close()
	self.False(self.core.CreateTable("x"))
	self.Equal(errs.ErrConnectionFailure, self.core.LastError())
	self.Empty(self.core.ListTables())
	self.Nil(self.core.Export())
	self.Equal(UnknownDate, self.core.GetCreationDate("x"))

	// Second close is a no-op.
	self.core.Close()
}

func TestBridge(t *testing.T) {
	suite.Run(t, &BridgeTestSuite{})
}

func TestConnectFailureReturnsNil(t *testing.T) {
	logs := &bytes.Buffer{}
	logger, err := logging.NewWithOutput(config.Logging{Level: "info"}, logs)
	require.NoError(t, err)

	core := ConnectDSN(filepath.Join(t.TempDir(), "missing", "dir", "x.db"), logger)
	assert.Nil(t, core)
	assert.Contains(t, logs.String(), "connect failed")
}

func TestConnectCreatesDirectory(t *testing.T) {
	cfg := &config.Config{
		Database: filepath.Join(t.TempDir(), "nested", "rolodex.db"),
		Logging:  config.Logging{Level: "info"},
	}
	core := Connect(cfg, logging.Discard())
	require.NotNil(t, core)
	t.Cleanup(func() { core.Close() })

	assert.True(t, core.CreateTable("Family"))

	// Reopen the same file: the table persists.
	core.Close()
	core = Connect(cfg, logrus.New())
	require.NotNil(t, core)
	names := []string{}
	for _, t := range core.ListTables() {
		names = append(names, t.Name)
	}
	assert.Equal(t, []string{"Family"}, names)
}

func TestNilCoreFailsQuietly(t *testing.T) {
	var core *Core
	assert.False(t, core.EnsureRegistry())
	assert.False(t, core.CreateTable("Family"))
	assert.Empty(t, core.ListTables())
	assert.Empty(t, core.Combine([]string{"A", "B"}))
	assert.Empty(t, core.Search("a", []string{"A"}, "name"))
	assert.Empty(t, core.Mentions([]string{"A"}))
	assert.Nil(t, core.Export())
	assert.Nil(t, core.EngineInfo())
	assert.Equal(t, UnknownDate, core.GetCreationDate("Family"))
	assert.Equal(t, -1, core.CountRecords("Family"))
	assert.Equal(t, errs.ErrConnectionFailure, core.LastError())
	core.Close()
}

func TestNilLoggerIsDiscarded(t *testing.T) {
	core := ConnectDSN(":memory:", nil)
	require.NotNil(t, core)
	defer core.Close()

	assert.False(t, core.CreateTable("DROP"))
	assert.True(t, core.CreateTable("Friends"))

	assert.Nil(t, ConnectDSN(filepath.Join(t.TempDir(), "missing", "x.db"), nil))
	assert.Nil(t, Connect(nil, nil))
}

func TestSystemTablesRefusedEverywhere(t *testing.T) {
	core := ConnectDSN(":memory:", logging.Discard())
	require.NotNil(t, core)
	defer core.Close()
	require.True(t, core.CreateTable("A"))

	assert.Empty(t, core.Combine([]string{"A", "tables"}))
	assert.Equal(t, errs.ErrInvalidIdentifier, core.LastError())

	assert.Empty(t, core.Search("x", []string{"tables", "sqlite_master"}, "name"))
	assert.Nil(t, core.LastError())

	assert.False(t, core.CreateTable("Tables"))
	assert.Equal(t, errs.ErrInvalidIdentifier, core.LastError())
}

func TestUnicodeTableNames(t *testing.T) {
	core := ConnectDSN(":memory:", logging.Discard())
	require.NotNil(t, core)
	defer core.Close()

	for _, name := range []string{"café", "Familia_Añez", "Друзья"} {
		require.True(t, core.CreateTable(name), name)
		require.True(t, core.InsertRecord(name, store.ContactFields{Name: "Zoë"}), name)
	}

	rows := core.Combine([]string{"café", "Familia_Añez", "Друзья"})
	require.Len(t, rows, 3)
	assert.Equal(t, "café", rows[0].SourceTable)
	assert.Equal(t, "Друзья", rows[2].SourceTable)

	found := core.Search("Zo", []string{"Друзья"}, "name")
	require.Len(t, found, 1)
	assert.Equal(t, "Друзья", found[0].SourceTable)

	assert.True(t, core.DropPhysicalTable("café"))
	assert.Len(t, core.ListTables(), 2)
}
