package wire

// This file collects the AST data model: the typed values every grammar
// rule in the command/, response/, search and fetch files ultimately
// builds. Each sum type is modeled as a struct with a Kind discriminant
// and the fields relevant to every variant; unused fields for a given
// Kind are simply left zero. This mirrors the teacher's ReqCmd/RespCmd
// tagged-struct shape rather than an interface-per-variant design, which
// would force a type switch at every call site for what is, in practice,
// a closed and exhaustively-matched set of alternatives.

// TaggedCommand is a complete client command: a tag plus its verb.
type TaggedCommand struct {
	Tag     string
	Command Command
}

// CommandKind discriminates the ~40 IMAP command verbs.
type CommandKind int

const (
	CmdCapability CommandKind = iota
	CmdLogout
	CmdNoop
	CmdStartTLS
	CmdAuthenticate
	CmdLogin
	CmdCreate
	CmdDelete
	CmdRename
	CmdSelect
	CmdExamine
	CmdStatus
	CmdSubscribe
	CmdUnsubscribe
	CmdLSub
	CmdList
	CmdSearch
	CmdESearch
	CmdFetch
	CmdStore
	CmdCopy
	CmdMove
	CmdUIDCopy
	CmdUIDMove
	CmdUIDFetch
	CmdUIDSearch
	CmdUIDStore
	CmdUIDExpunge
	CmdExpunge
	CmdCheck
	CmdClose
	CmdUnselect
	CmdIdle
	CmdEnable
	CmdID
	CmdNamespace
	CmdAppend
	CmdGetMetadata
	CmdSetMetadata
	CmdGetQuota
	CmdSetQuota
	CmdGetQuotaRoot
	CmdResetKey
	CmdGenURLAuth
	CmdURLFetch
	CmdCompress
	CmdUIDBatches
	CmdGetJMAPAccess
)

// Command is the tagged union over every command verb, each carrying
// only the fields relevant to its Kind.
type Command struct {
	Kind CommandKind

	// LOGIN
	Username, Password []byte

	// AUTHENTICATE
	MechanismName   string
	InitialResponse []byte
	HasInitial      bool

	// CREATE/DELETE/RENAME/SELECT/EXAMINE/SUBSCRIBE/UNSUBSCRIBE/
	// LSUB/STATUS/GETQUOTAROOT/UNSELECT mailbox operand(s)
	Mailbox    Mailbox
	NewMailbox Mailbox

	// SELECT/EXAMINE qualifiers (CONDSTORE, QRESYNC)
	SelectQualifiers []SelectQualifier

	// STATUS
	StatusAttributes []StatusAttribute

	// LIST/LSUB
	ListReference  Mailbox
	ListPatterns   []Mailbox
	ListSelectOpts []ListSelectOption
	ListReturnOpts []ListReturnOption

	// SEARCH/UID SEARCH/ESEARCH
	SearchCharset      string
	HasSearchCharset   bool
	SearchKeyRoot      *SearchKey
	SearchReturnOpts   []SearchReturnOption
	HasSearchReturn    bool

	// FETCH/UID FETCH
	FetchSet        LastCommandSet[SeqBrand]
	UIDFetchSet     LastCommandSet[UIDBrand]
	FetchAttrs      []FetchAttribute
	FetchModifiers  []FetchModifier

	// STORE/UID STORE
	StoreSet      LastCommandSet[SeqBrand]
	UIDStoreSet   LastCommandSet[UIDBrand]
	StoreMode     StoreMode
	StoreSilent   bool
	StoreFlags    []Flag
	StoreUnchangedSince uint64
	HasUnchangedSince   bool

	// COPY/MOVE/UID COPY/UID MOVE
	CopySet    LastCommandSet[SeqBrand]
	UIDCopySet LastCommandSet[UIDBrand]

	// EXPUNGE/UID EXPUNGE
	UIDExpungeSet UIDSet
	HasUIDExpungeSet bool

	// UIDBATCHES (RFC 9394)
	UIDBatchesSet UIDSet

	// ENABLE
	Capabilities []string

	// ID
	IDParams OrderedStringMap

	// APPEND
	AppendOptions AppendOptions

	// GETMETADATA/SETMETADATA
	MetadataEntries []MetadataEntry
	MetadataOptions MetadataOptions

	// GETQUOTA/SETQUOTA/GETQUOTAROOT
	QuotaRoot  string
	QuotaLimits []QuotaResourceLimit

	// RESETKEY/GENURLAUTH/URLFETCH
	URLMechanisms []string
	URLs          []string

	// COMPRESS
	CompressionMechanism string
}

// SelectQualifier models SELECT/EXAMINE optional qualifiers such as
// CONDSTORE (RFC 7162) and QRESYNC (RFC 7162 / RFC 5162).
type SelectQualifier struct {
	Condstore bool
	QResync   *QResyncParameters
}

// QResyncParameters carries the QRESYNC SELECT parameter.
type QResyncParameters struct {
	UIDValidity        UIDValidity
	ModSeq             ModificationSequenceValue
	KnownUIDs          *UIDSet
	SeqMatch           *SequenceMatchData
}

// SequenceMatchData is the optional "(known-sequence-set known-uid-set)"
// tail of a QRESYNC parameter.
type SequenceMatchData struct {
	KnownSequenceSet SequenceSet
	KnownUIDSet      UIDSet
}

// StatusAttribute enumerates STATUS data items.
type StatusAttribute int

const (
	StatusMessages StatusAttribute = iota
	StatusRecent
	StatusUIDNext
	StatusUIDValidity
	StatusUnseen
	StatusHighestModSeq
	StatusSize
	StatusAppendLimit
	StatusDeleted
	StatusMailboxID
)

// ListSelectOption enumerates LIST-EXTENDED (RFC 5258) selection
// options.
type ListSelectOption int

const (
	ListSelectSubscribed ListSelectOption = iota
	ListSelectRemote
	ListSelectRecursiveMatch
	ListSelectSpecialUse
)

// ListReturnOption enumerates LIST-EXTENDED return options.
type ListReturnOption int

const (
	ListReturnSubscribed ListReturnOption = iota
	ListReturnChildren
	ListReturnSpecialUse
	ListReturnStatus
)

// StoreMode distinguishes STORE's three flag operations.
type StoreMode int

const (
	StoreReplace StoreMode = iota
	StoreAdd
	StoreRemove
)

// OrderedStringMap is an insertion-ordered map of nullable strings, used
// by ID (RFC 2971) and similar free-form key/value payloads where
// ordering on the wire is meaningful and duplicate round-tripping
// matters.
type OrderedStringMap struct {
	Keys   []string
	Values []NullableString
}

// NullableString distinguishes an absent (NIL) string from an empty one.
type NullableString struct {
	Value string
	IsNil bool
}

func (m *OrderedStringMap) Set(key string, v NullableString) {
	m.Keys = append(m.Keys, key)
	m.Values = append(m.Values, v)
}

// MetadataEntry is a single METADATA entry path plus optional value (for
// SETMETADATA) or depth-scoped fetch (for GETMETADATA), per RFC 5464.
type MetadataEntry struct {
	Path  string
	Value NullableString
}

// MetadataOptions carries GETMETADATA's optional DEPTH/MAXSIZE options.
type MetadataOptions struct {
	Depth      MetadataDepth
	HasMaxSize bool
	MaxSize    uint32
}

type MetadataDepth int

const (
	MetadataDepthZero MetadataDepth = iota
	MetadataDepthOne
	MetadataDepthInfinity
)

// QuotaResourceLimit is one "resource-name limit" pair in SETQUOTA, per
// RFC 2087/9208.
type QuotaResourceLimit struct {
	Resource string
	Limit    uint64
}

// AppendOptions is the flag list, optional internal date, and extension
// parameters that precede an APPEND message's literal.
type AppendOptions struct {
	Flags        []Flag
	HasDate      bool
	InternalDate ServerMessageDate
	Extensions   OrderedParamMap
}

// OrderedParamMap holds APPEND/CATENATE extension "tag-param" pairs.
type OrderedParamMap struct {
	Keys   []string
	Values []string
}

// AppendData is the byte-count/encoding-mode pair parsed from an
// APPEND or CATENATE literal frame.
type AppendData struct {
	ByteCount                     uint64
	WithoutContentTransferEncoding bool
}

// AppendStateKind discriminates the APPEND/CATENATE upload state
// machine's states (§4.6).
type AppendStateKind int

const (
	AppendStart AppendStateKind = iota
	AppendBeginMessage
	AppendMessageBytes
	AppendBeginCatenate
	AppendCatenateURL
	AppendCatenateData
	AppendEndCatenate
	AppendFinish
)

// AppendCommand is one state-machine transition of an in-progress
// APPEND. The caller drives the transport between states: on
// AppendBeginMessage/AppendCatenateData it must read exactly Data's byte
// count before calling back into the parser.
type AppendCommand struct {
	Kind AppendStateKind

	Tag     string
	Mailbox Mailbox
	Options AppendOptions

	Data AppendData

	CatenateURL string
}

// CommandStreamPartKind discriminates the discrete "things a client
// sends" that a server-side reader loop must recognize between full
// commands.
type CommandStreamPartKind int

const (
	PartAppend CommandStreamPartKind = iota
	PartTaggedCommand
	PartIdleDone
	PartContinuationResponse
)

// CommandStreamPart wraps whichever of TaggedCommand, AppendCommand, or a
// bare continuation-line response the caller's framing produced next.
type CommandStreamPart struct {
	Kind                 CommandStreamPartKind
	TaggedCommand        TaggedCommand
	Append               AppendCommand
	ContinuationResponse []byte
}

// --- Responses ---------------------------------------------------------

// TaggedResponse is a server's final status line for a tagged command.
type TaggedResponse struct {
	Tag    string
	Status UntaggedStatusKind
	Text   ResponseText
}

// UntaggedStatusKind enumerates OK/NO/BAD/PREAUTH/BYE.
type UntaggedStatusKind int

const (
	StatusOK UntaggedStatusKind = iota
	StatusNo
	StatusBad
	StatusPreauth
	StatusBye
)

// UntaggedStatus is an untagged conditional-state response, "* OK ...".
type UntaggedStatus struct {
	Kind UntaggedStatusKind
	Text ResponseText
}

// ResponseText is the free-form text following an untagged status,
// along with its optional bracketed response-text-code.
type ResponseText struct {
	HasCode bool
	Code    ResponseTextCode
	Text    string
}

// ResponsePayloadKind discriminates the untagged response alternatives.
type ResponsePayloadKind int

const (
	PayloadConditionalState ResponsePayloadKind = iota
	PayloadMailboxData
	PayloadMessageData
	PayloadCapabilityData
	PayloadID
	PayloadEnableData
	PayloadQuota
	PayloadQuotaRoot
	PayloadMetadata
)

// ResponsePayload is the parsed body of an untagged response.
type ResponsePayload struct {
	Kind ResponsePayloadKind

	ConditionalState UntaggedStatus
	MailboxData      MailboxData
	MessageData      MessageData
	Capabilities     []string
	IDParams         OrderedStringMap
	EnabledCaps      []string
	Quota            QuotaData
	QuotaRoot        QuotaRootData
	Metadata         MetadataResponse
}

// MailboxDataKind enumerates the "mailbox-data" untagged response forms.
type MailboxDataKind int

const (
	MailboxDataFlags MailboxDataKind = iota
	MailboxDataList
	MailboxDataLSub
	MailboxDataSearch
	MailboxDataESearch
	MailboxDataStatus
	MailboxDataExists
	MailboxDataRecent
	MailboxDataNamespace
)

// MailboxData is the payload for "* <data>" lines describing mailbox
// state rather than message state.
type MailboxData struct {
	Kind MailboxDataKind

	Flags []Flag

	ListMailbox    Mailbox
	ListAttributes []string
	ListHierarchy  byte
	ListExtensions []ListExtendedItem

	SearchResults  []uint32
	SearchModSeq   uint64
	HasSearchModSeq bool

	ESearch ESearchResponse

	StatusMailbox Mailbox
	StatusItems   []StatusResponseItem

	// ExistsCount holds the count for both MailboxDataExists and
	// MailboxDataRecent; Kind disambiguates which.
	ExistsCount uint32

	Namespace NamespaceResponse
}

// ListExtendedItem is a LIST-EXTENDED child-info tagged extension entry.
type ListExtendedItem struct {
	Tag    string
	Values []string
}

// StatusResponseItem is one "attr value" pair in a STATUS response.
type StatusResponseItem struct {
	Attribute StatusAttribute
	Value     uint64
}

// ESearchResponse is the RFC 4731/9394 extended SEARCH response.
type ESearchResponse struct {
	HasTag  bool
	Tag     string
	UID     bool
	Returns []ESearchReturnData
}

// ESearchReturnData is one "atom value" pair in an ESEARCH response,
// e.g. MIN 4, MAX 19, ALL 1:19, COUNT 5, MODSEQ 123.
type ESearchReturnData struct {
	Option SearchReturnOption
	Min    uint32
	Max    uint32
	Count  uint32
	ModSeq uint64
	All    UIDSet
}

// NamespaceResponse is the RFC 2342 triple of namespace descriptor
// lists: personal, other users', shared.
type NamespaceResponse struct {
	Personal, OtherUsers, Shared []NamespaceDescriptor
}

// NamespaceDescriptor is one namespace prefix/delimiter pair, with
// optional extension parameters.
type NamespaceDescriptor struct {
	Prefix     string
	Delimiter  byte
	HasDelim   bool
	Extensions OrderedParamMap
}

// MessageDataKind discriminates per-message untagged responses.
type MessageDataKind int

const (
	MessageDataExpunge MessageDataKind = iota
	MessageDataVanished
	MessageDataVanishedEarlier
	MessageDataGenURLAuth
	MessageDataURLFetch
)

// MessageData is the payload for message-numbered untagged responses.
type MessageData struct {
	Kind MessageDataKind

	ExpungedSeq SequenceNumber
	VanishedSet UIDSet

	URLAuthURLs []string
	URLFetches  []URLFetchData
}

// URLFetchData is one "url literal8" pair in a URLFETCH response.
type URLFetchData struct {
	URL    string
	IsNil  bool
	Data   []byte
}

// QuotaData is a QUOTA response: a root name and its resource usages.
type QuotaData struct {
	Root      string
	Resources []QuotaResourceUsage
}

// QuotaResourceUsage is one "resource usage limit" triple.
type QuotaResourceUsage struct {
	Resource      string
	Usage, Limit  uint64
}

// QuotaRootData is a QUOTAROOT response: a mailbox and its quota roots.
type QuotaRootData struct {
	Mailbox Mailbox
	Roots   []string
}

// MetadataResponse is a METADATA response: a mailbox and its entries.
type MetadataResponse struct {
	Mailbox Mailbox
	Entries []MetadataEntry
}

// --- FETCH response streaming -------------------------------------------

// FetchEventKind discriminates the events parseFetchResponse emits.
type FetchEventKind int

const (
	FetchEventStart FetchEventKind = iota
	FetchEventStartUID
	FetchEventSimpleAttribute
	FetchEventLiteralStreamBegin
	FetchEventQuotedStreamBegin
	FetchEventFinish
)

// StreamKind discriminates which streamed attribute a
// LiteralStreamBegin/QuotedStreamBegin event refers to.
type StreamKind int

const (
	StreamRfc822Text StreamKind = iota
	StreamRfc822Header
	StreamRfc822
	StreamBody
	StreamBinary
)

// FetchResponseEvent is one incremental event of a streaming FETCH
// response parse.
type FetchResponseEvent struct {
	Kind FetchEventKind

	SeqNum SequenceNumber
	UID    UID

	Attribute MessageAttribute

	StreamKind    StreamKind
	StreamSection Section
	StreamOffset  uint32
	HasOffset     bool
	ByteCount     uint32

	// QuotedData carries a QuotedStreamBegin body inline: a quoted
	// string is embedded in the response line, so there is nothing
	// left on the transport for the caller to stream. ByteCount ==
	// len(QuotedData) for that event kind.
	QuotedData []byte
}

// MessageAttributeKind discriminates the fixed-size FETCH response
// attributes (as opposed to the streamed ones, which are reported via
// LiteralStreamBegin/QuotedStreamBegin instead).
type MessageAttributeKind int

const (
	AttrEnvelope MessageAttributeKind = iota
	AttrFlags
	AttrInternalDate
	AttrUID
	AttrModSeq
	AttrGmailMsgID
	AttrGmailThrID
	AttrGmailLabels
	AttrRfc822Size
	AttrBodyStructure
	AttrNilBody
	AttrBinarySize
	AttrPreview
)

// MessageAttribute is a single fixed-size FETCH response value.
type MessageAttribute struct {
	Kind MessageAttributeKind

	Envelope     Envelope
	Flags        []Flag
	InternalDate ServerMessageDate
	UID          UID
	ModSeq       uint64
	GmailID      uint64
	GmailLabels  []string
	Rfc822Size   uint32
	BodyStructure BodyStructure
	NilBodyKind  StreamKind
	BinarySection []uint32
	BinarySize   uint32
	PreviewText  string
	PreviewIsNil bool
}

// BodyStructure is left intentionally shallow: the recursive MIME body
// structure grammar (RFC 3501 section 7.4.2) is a large, largely
// orthogonal sub-grammar. Raw holds its unparsed parenthesized-list text
// so a caller needing full structure can recurse with the same
// ParseBuffer primitives; Extended records whether BODYSTRUCTURE's
// extension data was requested.
type BodyStructure struct {
	Raw      []byte
	Extended bool
}

// --- Envelope & addresses ------------------------------------------------

// Envelope is the RFC 3501 section 7.4.2 ENVELOPE 10-tuple.
type Envelope struct {
	Date        NullableString
	Subject     NullableString
	From        []AddressOrGroup
	Sender      []AddressOrGroup
	ReplyTo     []AddressOrGroup
	To          []AddressOrGroup
	CC          []AddressOrGroup
	BCC         []AddressOrGroup
	InReplyTo   NullableString
	MessageID   NullableString
}

// Address is one RFC 2822 mailbox: display name, source route (obsolete
// but still on the wire), mailbox name, and host.
type Address struct {
	Name       NullableString
	SourceRoot NullableString
	Mailbox    NullableString
	Host       NullableString
}

// AddressOrGroupKind discriminates a plain address from an RFC 2822
// group within an envelope address list.
type AddressOrGroupKind int

const (
	AddressPlain AddressOrGroupKind = iota
	AddressGroup
)

// AddressOrGroup is one element of an envelope address list. On the
// wire a group is encoded flat, bracketed by a start marker (host NIL,
// mailbox non-NIL) and an end marker (host NIL, mailbox NIL, RFC 3501
// section 7.4.2); the parser rebuilds the nesting, so an AddressGroup
// entry owns its members directly. A group left unclosed at the end of
// the list is closed implicitly; a stray end marker with no open group
// is dropped.
type AddressOrGroup struct {
	Kind      AddressOrGroupKind
	Address   Address
	GroupName string
	Members   []AddressOrGroup
}

// --- Fetch attributes & sections -----------------------------------------

// FetchAttributeKind discriminates the FETCH attribute list items.
type FetchAttributeKind int

const (
	FAEnvelope FetchAttributeKind = iota
	FAFlags
	FAInternalDate
	FAUID
	FAModSeq
	FAGmailMessageID
	FAGmailThreadID
	FAGmailLabels
	FARfc822
	FARfc822Header
	FARfc822Text
	FARfc822Size
	FABodyStructure
	FABodySection
	FABinary
	FABinarySize
	FAPreview
)

// FetchAttribute is one requested FETCH data item.
type FetchAttribute struct {
	Kind FetchAttributeKind

	BodyStructureExtensions bool

	Peek         bool
	Section      Section
	HasPartial   bool
	PartialStart uint32
	PartialCount uint32

	BinarySection []uint32

	PreviewLazy bool
}

// FetchModifier is a FETCH "(modifier ...)" suffix item, e.g. CHANGEDSINCE.
type FetchModifier struct {
	ChangedSince uint64
	Vanished     bool
}

// SectionSpecifierKind discriminates Section's optional part specifier.
type SectionSpecifierKind int

const (
	SectionNone SectionSpecifierKind = iota
	SectionHeader
	SectionHeaderFields
	SectionHeaderFieldsNot
	SectionText
	SectionMIME
)

// Section is a FETCH BODY[...] body-part path plus optional specifier.
type Section struct {
	Path       []uint32
	Specifier  SectionSpecifierKind
	FieldNames []string
}

// --- Search --------------------------------------------------------------

// SearchKeyKind discriminates the ~35 SEARCH key alternatives.
type SearchKeyKind int

const (
	SKAll SearchKeyKind = iota
	SKAnswered
	SKBcc
	SKBefore
	SKBody
	SKCc
	SKDeleted
	SKDraft
	SKFlagged
	SKFrom
	SKHeader
	SKKeyword
	SKLarger
	SKNew
	SKNot
	SKOld
	SKOn
	SKOr
	SKRecent
	SKSeen
	SKSentBefore
	SKSentOn
	SKSentSince
	SKSince
	SKSmaller
	SKSubject
	SKText
	SKTo
	SKUnanswered
	SKUndeleted
	SKUndraft
	SKUnflagged
	SKUnkeyword
	SKUnseen
	SKSequenceNumbers
	SKUid
	SKAnd
	SKModseq
	SKFilter
	SKEmailID
	SKThreadID
	SKOlder
	SKYounger
	SKSaveDateSupported
	SKSaveDate
)

// SearchModificationSequence is MODSEQ's optional entry-name/type prefix
// plus its comparison value, per RFC 7162 section 3.1.5.
type SearchModificationSequence struct {
	HasEntry  bool
	EntryName string
	EntryType MetadataPermission
	Value     uint64
}

// MetadataPermission is MODSEQ's "priv"/"shared"/"all" entry-type token.
type MetadataPermission int

const (
	MetadataAll MetadataPermission = iota
	MetadataPriv
	MetadataShared
)

// SearchKey is a recursive sum type over every search criterion; And/Or
// /Not own their children outright, matching the grammar's tree shape.
type SearchKey struct {
	Kind SearchKeyKind

	Text   string
	Number uint32
	Date   IMAPDate

	Not      *SearchKey
	Or       [2]*SearchKey
	And      []*SearchKey

	SequenceNumbers LastCommandSet[SeqBrand]
	UidSet          LastCommandSet[UIDBrand]

	Modseq SearchModificationSequence

	EmailID   string
	ThreadID  string

	HeaderField string
}

// SearchReturnOption enumerates ESEARCH RETURN options (RFC 4731/9394).
type SearchReturnOption int

const (
	ReturnMin SearchReturnOption = iota
	ReturnMax
	ReturnAll
	ReturnCount
	ReturnSave
	ReturnContext
	ReturnUpdate
	ReturnPartial
	ReturnModSeq
)
