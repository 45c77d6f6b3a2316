package classpath

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/archscan/classpathfs/internal/testutil"
)

func TestResolveFlatClasspathPreservesOrder(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "lib"), 0o755))
	a, err := testutil.WriteZipFile(filepath.Join(dir, "lib"), "a.jar", testutil.ZipEntry{Name: "A.class", Content: "a", Stored: true})
	require.NoError(t, err)
	b, err := testutil.WriteZipFile(filepath.Join(dir, "lib"), "b.jar", testutil.ZipEntry{Name: "B.class", Content: "b", Stored: true})
	require.NoError(t, err)

	r := New(ScanSpec{}, WithWorkers(2))
	out, err := r.Resolve(context.Background(), []string{"lib/a.jar", "lib/b.jar"}, dir)
	require.NoError(t, err)
	require.Equal(t, []string{a, b}, out)
}

func TestResolveDuplicateDedupKeepsFirst(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "lib"), 0o755))
	a, err := testutil.WriteZipFile(filepath.Join(dir, "lib"), "a.jar", testutil.ZipEntry{Name: "A.class", Content: "a", Stored: true})
	require.NoError(t, err)

	r := New(ScanSpec{})
	out, err := r.Resolve(context.Background(), []string{"lib/a.jar", "./lib/a.jar"}, dir)
	require.NoError(t, err)
	require.Equal(t, []string{a}, out)
}

func TestResolveManifestExpansionInsertsBetweenSiblings(t *testing.T) {
	dir := t.TempDir()
	libDir := filepath.Join(dir, "lib")
	require.NoError(t, os.MkdirAll(libDir, 0o755))

	c, err := testutil.WriteZipFile(libDir, "c.jar", testutil.ZipEntry{Name: "C.class", Content: "c", Stored: true})
	require.NoError(t, err)
	d, err := testutil.WriteZipFile(libDir, "d.jar", testutil.ZipEntry{Name: "D.class", Content: "d", Stored: true})
	require.NoError(t, err)

	aData, err := testutil.BuildZip(testutil.ManifestEntry("c.jar d.jar"), testutil.ZipEntry{Name: "A.class", Content: "a", Stored: true})
	require.NoError(t, err)
	a := filepath.Join(libDir, "a.jar")
	require.NoError(t, os.WriteFile(a, aData, 0o644))

	b, err := testutil.WriteZipFile(libDir, "b.jar", testutil.ZipEntry{Name: "B.class", Content: "b", Stored: true})
	require.NoError(t, err)

	r := New(ScanSpec{}, WithWorkers(3))
	out, err := r.Resolve(context.Background(), []string{"lib/a.jar", "lib/b.jar"}, dir)
	require.NoError(t, err)
	require.Equal(t, []string{a, c, d, b}, out)
}

func TestResolveBlacklistsSystemJars(t *testing.T) {
	dir := t.TempDir()
	jvmDir := filepath.Join(dir, "jvm", "java-17", "lib")
	require.NoError(t, os.MkdirAll(jvmDir, 0o755))
	_, err := testutil.WriteZipFile(jvmDir, "rt.jar", testutil.ZipEntry{Name: "java/lang/Object.class", Content: "x", Stored: true})
	require.NoError(t, err)

	appLib := filepath.Join(dir, "lib")
	require.NoError(t, os.MkdirAll(appLib, 0o755))
	app, err := testutil.WriteZipFile(appLib, "app.jar", testutil.ZipEntry{Name: "App.class", Content: "x", Stored: true})
	require.NoError(t, err)

	r := New(ScanSpec{BlacklistSystemJars: true})
	out, err := r.Resolve(context.Background(), []string{
		filepath.Join(jvmDir, "rt.jar"),
		"lib/app.jar",
	}, dir)
	require.NoError(t, err)
	require.Equal(t, []string{app}, out)
}

func TestResolveSkipsMissingEntries(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "lib"), 0o755))
	a, err := testutil.WriteZipFile(filepath.Join(dir, "lib"), "a.jar", testutil.ZipEntry{Name: "A.class", Content: "a", Stored: true})
	require.NoError(t, err)

	r := New(ScanSpec{})
	out, err := r.Resolve(context.Background(), []string{"lib/missing.jar", "lib/a.jar"}, dir)
	require.NoError(t, err)
	require.Equal(t, []string{a}, out)
}

func TestResolveAcceptsDirectoryEntries(t *testing.T) {
	dir := t.TempDir()
	classesDir := filepath.Join(dir, "classes")
	require.NoError(t, os.MkdirAll(classesDir, 0o755))

	r := New(ScanSpec{})
	out, err := r.Resolve(context.Background(), []string{"classes"}, dir)
	require.NoError(t, err)
	require.Equal(t, []string{classesDir}, out)
}
