package testutil

// Shared composite-document fixtures. Kept in one place so unit tests across
// packages exercise the same shapes: a plain XML fragment, a properties
// fragment, flat-target merges, and the malformed variants.

// CompositeSingleFragment is the smallest useful composite: one XML
// destination.
const CompositeSingleFragment = `<config name="a.xml"><root><k>v</k></root></config>`

// CompositeScenario pairs one XML fragment with one flat-target fragment
// holding a single nested sub-element.
const CompositeScenario = `<config name="a.xml"><root><k>v</k></root></config>` +
	`<config name="apusic.conf"><config name="apusic.conf"><p1>x</p1></config></config>`

// CompositeFlatMerge carries two flat-target fragments whose sub-elements
// must end up concatenated, in source order, in one flattened file.
const CompositeFlatMerge = `<config name="apusic.conf"><config name="apusic.conf"><p1>x</p1></config></config>` +
	`<config name="apusic.conf"><config name="apusic.conf"><p2>y</p2></config></config>`

// CompositeWithProperties includes a properties-style destination, which is
// written verbatim without a declaration line.
const CompositeWithProperties = `<config name="server.xml"><server><port>6888</port></server></config>` +
	`<config name="jvm.properties">heap=512m
stack=1m</config>`

// CompositeNamelessFragment has one good fragment and one lacking the name
// attribute; the nameless one must be rejected, not written.
const CompositeNamelessFragment = `<config name="a.xml"><root/></config>` +
	`<config id="17"><orphan/></config>`

// CompositeMalformedFlat routes unparseable markup to the flat target,
// between two good fragments; the two good ones must still materialize.
const CompositeMalformedFlat = `<config name="a.xml"><root><k>1</k></root></config>` +
	`<config name="apusic.conf"><config name="apusic.conf"><broken></config>` +
	`<config name="b.xml"><root><k>3</k></root></config>`

// CompositeMultiline spreads fragment content across lines; extraction must
// span them.
const CompositeMultiline = `<config name="multi.xml">
<root>
  <k>v</k>
</root>
</config>`
