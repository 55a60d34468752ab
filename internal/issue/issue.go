// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/slices"
)

type Id int

const (
	DescriptorNotFoundId Id = iota + 1
	DescriptorInvalidId
	MissingFieldId
	DependencyNotFoundId
	DependencyCycleId
	ArchiveWriteFailedId
	ConfigLoadFailedId
	PermissionDeniedId
	AddonsDirNotFoundId
)

type MarkdownMsg string

type HttpLink string

type Issue struct {
	id       Id
	mdMsg    MarkdownMsg
	docLinks []HttpLink
	extLinks []HttpLink // third-party pages worth reading
}

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

// Markdown returns the page text including the "See also" link list.
func (i *Issue) Markdown() string {
	md := string(i.mdMsg)
	if len(i.docLinks) == 0 && len(i.extLinks) == 0 {
		return md
	}
	md += "\n\n## See also\n"
	for _, link := range append(slices.Clone(i.docLinks), i.extLinks...) {
		md += "- <" + string(link) + ">\n"
	}
	return md
}

// Render renders the page with the named glamour style ("dark", "light",
// "notty", ...).
func (i *Issue) Render(stylePath string) (string, error) {
	return render(i.Markdown(), stylePath)
}

const descriptorExample = `
## Minimal addon.json
~~~json
{
    "name": "My Addon",
    "version": "1.0.0",
    "description": "What it does",
    "godotVersion": "4.1",
    "category": "Misc",
    "icon": "Icon.png",
    "dependencies": []
}
~~~`

var (
	render = glamour.Render

	descriptorNotFoundIssue = &Issue{
		id: DescriptorNotFoundId,
		mdMsg: `
# Addon descriptor not found!

Every directory under the addons root must contain an ` + "`addon.json`" + `.

## Things you can try:
- Scaffold the descriptor:
~~~
$ addonpack create <name>
~~~
- Move unrelated directories out of the addons root, or prefix them with a dot
  so they are skipped.` + descriptorExample,
	}

	descriptorInvalidIssue = &Issue{
		id: DescriptorInvalidId,
		mdMsg: `
# Invalid addon descriptor!

The ` + "`addon.json`" + ` could not be parsed or one of its fields has the wrong type.

## Things you can try:
- Check the JSON syntax (trailing commas, missing quotes)
- ` + "`ignore`" + ` and ` + "`dependencies`" + ` must be arrays of strings
- ` + "`isProject`" + ` must be a boolean
- Run the validator for every addon:
~~~
$ addonpack validate
~~~`,
	}

	missingFieldIssue = &Issue{
		id: MissingFieldId,
		mdMsg: `
# Required descriptor field missing!

The fields ` + "`name`, `version`, `description` and `godotVersion`" + ` are mandatory
and must not be empty.` + descriptorExample,
	}

	dependencyNotFoundIssue = &Issue{
		id: DependencyNotFoundId,
		mdMsg: `
# Dependency not found!

A ` + "`dependencies`" + ` entry names an addon directory that does not exist under the
addons root. Entries have the form ` + "`<addon>`" + ` or ` + "`<addon>/<sub-path>`" + `,
where ` + "`<addon>`" + ` is the directory name, not the display name.

## Things you can try:
- Check the spelling (directory names are case sensitive)
- List the known addons and their dependencies:
~~~
$ addonpack deps
~~~`,
	}

	dependencyCycleIssue = &Issue{
		id: DependencyCycleId,
		mdMsg: `
# Dependency cycle detected!

Two or more addons depend on each other, so none of them can be folded into a
single archive.

## Things you can try:
- Remove one edge of the cycle shown above
- Move the shared files into a third addon that both depend on`,
	}

	archiveWriteFailedIssue = &Issue{
		id: ArchiveWriteFailedId,
		mdMsg: `
# Failed to write an archive!

An addon file could not be read or the zip could not be written to the output
directory.

## Things you can try:
- Check that the output directory is writable and the disk is not full
- Check that no other process holds the archive open
- Re-run with ` + "`--verbose`" + ` to see which file failed`,
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration!

The configuration file could not be parsed or does not match the schema.

## Things you can try:
- Show the effective configuration:
~~~
$ addonpack config show
~~~
- Write a fresh default file:
~~~
$ addonpack config init
~~~

## Example addonpack.cue
~~~cue
addons_dir:  "addons"
output_dir:  "build"
build: jobs: 4
~~~`,
	}

	permissionDeniedIssue = &Issue{
		id: PermissionDeniedId,
		mdMsg: `
# Permission denied!

A file or directory could not be read or written.

## Things you can try:
- Check the permissions of the addons root and the output directory
- Choose another output directory with ` + "`--output`",
	}

	addonsDirNotFoundIssue = &Issue{
		id: AddonsDirNotFoundId,
		mdMsg: `
# Addons directory not found!

The addons root does not exist or is not a directory.

## Things you can try:
- Run addonpack from the repository root
- Point it at the right place:
~~~
$ addonpack build --addons path/to/addons
~~~`,
	}

	issues = map[Id]*Issue{
		descriptorNotFoundIssue.Id(): descriptorNotFoundIssue,
		descriptorInvalidIssue.Id():  descriptorInvalidIssue,
		missingFieldIssue.Id():       missingFieldIssue,
		dependencyNotFoundIssue.Id(): dependencyNotFoundIssue,
		dependencyCycleIssue.Id():    dependencyCycleIssue,
		archiveWriteFailedIssue.Id(): archiveWriteFailedIssue,
		configLoadFailedIssue.Id():   configLoadFailedIssue,
		permissionDeniedIssue.Id():   permissionDeniedIssue,
		addonsDirNotFoundIssue.Id():  addonsDirNotFoundIssue,
	}
)

func Get(id Id) *Issue {
	return issues[id]
}
