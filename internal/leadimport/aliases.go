package leadimport

// AliasTable maps normalized header text to a canonical field.
type AliasTable map[string]Field

// Lookup returns the field for an already-normalized header.
func (t AliasTable) Lookup(header string) (Field, bool) {
	f, ok := t[header]
	return f, ok
}

// DefaultAliasTable returns a fresh copy of the built-in header aliases.
// Keys are in NormalizeHeader form; keys that contain accented letters in the
// source export are listed in both stripped ("tlphone") and folded
// ("telephone") spellings.
func DefaultAliasTable() AliasTable {
	return AliasTable{
		// Full name
		"fullname":     FieldFullName,
		"nomcomplet":   FieldFullName,
		"name":         FieldFullName,
		"nom":          FieldFullName,
		"nometprenom":  FieldFullName,
		"nomprenom":    FieldFullName,
		"prenomnom":    FieldFullName,
		"prnomnom":     FieldFullName,
		"nomprnom":     FieldFullName,
		"contact":      FieldFullName,
		"client":       FieldFullName,
		"contactname":  FieldFullName,
		"customername": FieldFullName,

		// First / last name candidates
		"firstname":  FieldFirstName,
		"prenom":     FieldFirstName,
		"prnom":      FieldFirstName,
		"givenname":  FieldFirstName,
		"lastname":   FieldLastName,
		"surname":    FieldLastName,
		"familyname": FieldLastName,

		// Email
		"email":        FieldEmail,
		"mail":         FieldEmail,
		"courriel":     FieldEmail,
		"emailaddress": FieldEmail,
		"adresseemail": FieldEmail,
		"adressemail":  FieldEmail,

		// Phone
		"phoneraw":          FieldPhone,
		"phone":             FieldPhone,
		"phonenumber":       FieldPhone,
		"telephone":         FieldPhone,
		"tlphone":           FieldPhone,
		"tel":               FieldPhone,
		"mobile":            FieldPhone,
		"portable":          FieldPhone,
		"numerodetelephone": FieldPhone,
		"numrodetlphone":    FieldPhone,

		// City
		"city":     FieldCity,
		"ville":    FieldCity,
		"localite": FieldCity,
		"localit":  FieldCity,
		"commune":  FieldCity,

		// Postal code
		"postalcode": FieldPostalCode,
		"codepostal": FieldPostalCode,
		"cp":         FieldPostalCode,
		"zip":        FieldPostalCode,
		"zipcode":    FieldPostalCode,
		"postcode":   FieldPostalCode,

		// Company
		"company":       FieldCompany,
		"companyname":   FieldCompany,
		"societe":       FieldCompany,
		"socit":         FieldCompany,
		"entreprise":    FieldCompany,
		"raisonsociale": FieldCompany,

		// Product
		"productname":  FieldProductName,
		"product":      FieldProductName,
		"produit":      FieldProductName,
		"categorie":    FieldProductName,
		"catgorie":     FieldProductName,
		"typedeprojet": FieldProductName,

		// Surface
		"surfacem2":        FieldSurface,
		"surface":          FieldSurface,
		"superficie":       FieldSurface,
		"surfacehabitable": FieldSurface,

		// Source
		"utmsource": FieldSource,
		"source":    FieldSource,
		"origine":   FieldSource,
		"canal":     FieldSource,

		// Status
		"status": FieldStatus,
		"statut": FieldStatus,
		"etat":   FieldStatus,
		"tat":    FieldStatus,

		// Comment
		"commentaire":  FieldComment,
		"commentaires": FieldComment,
		"comment":      FieldComment,
		"comments":     FieldComment,
		"remarque":     FieldComment,
		"remarques":    FieldComment,

		// Appointment
		"daterdv":           FieldDateRdv,
		"datedurdv":         FieldDateRdv,
		"daterendezvous":    FieldDateRdv,
		"datedurendezvous":  FieldDateRdv,
		"appointmentdate":   FieldDateRdv,
		"heurerdv":          FieldHeureRdv,
		"heuredurdv":        FieldHeureRdv,
		"heurerendezvous":   FieldHeureRdv,
		"heuredurendezvous": FieldHeureRdv,
		"appointmenttime":   FieldHeureRdv,
	}
}
