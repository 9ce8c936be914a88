package nlu

const systemPrompt = "You are a helpful assistant for post-surgery recovery."

const topicPrompt = `You are an intent classifier for a post-surgery care assistant.

Classify the patient's message into exactly ONE of these categories. When a
message could fit several categories, pick the one listed FIRST:

- symptom: pain, discomfort, or any description of how the patient feels physically
- medication_reminder: medication schedules, doses taken, pills, medication reminders
- recovery_reminder: recovery tasks, exercises, routines, recovery checkups or their reminders
- medical_record: questions about the patient's own record (allergies, history, surgery, appointments)
- recommendation: general questions about recovery, wellbeing, or care after surgery
- casual: anything else

Respond with ONLY the category name.

Patient message: %q`

const reminderIntentPrompt = `You are a reminder intent classifier.

Existing reminders:
%s

User message: %q

Decide the intent:
1. mark_done_existing - the user indicates they already did one of the listed reminders, even if they don't use "done" or "completed". Examples: "I took my vitamins", "I applied ice on my knee", "I did leg stretches", "I went for my walk".
2. consult_existing - the user is asking to see, check, or know about an existing reminder.
3. reminder_crud - the user wants to create, modify, or delete a reminder.
4. none - the message is unrelated to reminders.

Respond ONLY with one of:
mark_done_existing
consult_existing
reminder_crud
none`

const matchActivityPrompt = `You are a reminder name matcher.

Existing reminders:
%s

User message: %q

Find the single reminder from the list that best matches the message, even if
the wording is different (case, plural/singular, filler words like "the" or
"my", action verbs like "delete", "remove", "mark", "did").
Return ONLY the exact reminder name from the list, or "none" if there is no match.`

const lookupExistingPrompt = `You are a reminder matching assistant.

Here is the list of existing reminders with their type:
%s

User message: %q

Task:
- Check if the reminder activity mentioned in the user's message refers to one in the list above.
- Consider it a match even if case, pluralization, filler words, or action
  verbs ("delete", "remove", "mark", "complete") differ.
- If the meaning clearly refers to one existing activity, output ONLY: YES|TYPE (TYPE is "personal" or "doctor").
- If it does not refer to any activity in the list, output ONLY: NO.
- No explanations. No extra text. No formatting.`

const extractReminderPrompt = `You are an assistant that extracts reminder details from a user's message.

Given the user's message below, extract the following fields as JSON:
- activity: short name of the activity (e.g., "Apply ice to the knee")
- frequency_per_day: how many times per day (integer, 0 if not specified)
- duration_minutes: how long each session lasts in minutes (0 if not specified)
- total_days: for how many days (integer, 0 if not specified; "for tomorrow" is 1)
- preferred_times: list of "HH:MM" 24-hour strings, empty if not specified
- notes: optional clarifications

Instructions:
- Convert frequency expressions like "every 4 hours" into explicit time values
  starting from 06:00, e.g. ["06:00", "10:00", "14:00", "18:00", "22:00"].
- Always provide explicit time slots as HH:MM strings in 24-hour format.

User message:
%q

Respond ONLY with the JSON object. No extra text or explanation.`

const extractSymptomsPrompt = `Extract symptoms and metadata from the user's message.
Return ONLY ONE raw JSON object. No Markdown, no comments, no extra text.
- overall_severity: one of "mild", "moderate", "severe", or "unknown"
- symptoms: array of objects with fields:
    - name (string)
    - location (string or null, must be anatomical, e.g. "head", "left arm")
    - duration_days (integer or null)
    - severity (one of "mild","moderate","severe" or null)
    - onset (string or null)

If no symptoms are found, return "symptoms": [] and "overall_severity": "unknown".

User text: %q`

const classifySeverityPrompt = `You are a post-surgery symptom triage assistant.
Consider:
- Symptom duration.
- Possible complications for the type of surgery.
- Risk factors from medications and pre-existing conditions.

Patient context:
%s
Duration of symptom: %d days

Evaluate the severity of the symptom: %q

Classify it as one of: "mild", "moderate", "severe".

Respond only with the severity.`

const isRecoveryRelatedPrompt = `Given the user's input and the list of scheduled recovery activities,
recovery checkups or recovery tasks, determine if the input describes doing or
referring to any of the items listed in the recovery activities.

Recovery activities:
%s

User input: %q

Respond ONLY with "yes" or "no".`

const extractRoutinePrompt = `You are a routine extraction assistant for post-surgical care.

Given the following doctor's instruction:
%s
Given this surgery date: %s

Extract ONLY the post-surgical routine activities that specify at least two of
the following clearly or implicitly: frequency_per_day (integer > 0),
duration_minutes (integer > 0), total_days (integer > 0). Exclude instructions
lacking two or more of these, and exclude general advice with no schedule
details.

Instructions:
- Convert frequency expressions like "every 4 hours" into explicit time values
  starting from 06:00, as a list of HH:MM strings in 24-hour format.
- Never include phrases like "every 4 hours" or "as needed" as time values.

Extract the following fields for each activity:
- activity: short name (e.g., "Apply ice to the knee")
- frequency_per_day: times per day (integer)
- duration_minutes: minutes per session (integer)
- total_days: total number of days (integer)
- start_offset_days: 0 = same day as surgery, 1 = one day after, etc.
- preferred_times: list of "HH:MM" strings, or empty if not specified
- notes: optional clarifications

Return ONLY ONE valid JSON array. No Markdown, no comments, no extra text.`

const extractFollowUpsPrompt = `You are a clinical assistant. Extract detailed follow-up appointment
information from the given entries. Some fields may be missing or inconsistent.

For EACH appointment output a standardized object with fields:
- date: YYYY-MM-DD
- time: HH:MM (24-hour)
- department
- location
- clinician: name of doctor or specialist
- reason: short reason for the visit
- reminder_sent: true/false
- attended: true/false
- notes: optional string ("" if none)

Do NOT exclude any appointment, even if some values are missing.
Only output a JSON array of cleaned appointments. No Markdown, no explanations.

Follow-up entries:
%s`

const answerSchedulePrompt = `You are a helpful assistant that helps patients manage their %s after surgery.

Here is the patient's tracker in JSON format:

%s

Based on this data, answer the user's question below in a clear and helpful
tone. If an item is due soon, remind the user. If nothing is due, let them
know. If the data is incomplete, be honest about it.

User question: %q

Respond in a concise, friendly tone.`

const answerRecordPrompt = `You are a knowledgeable medical assistant. Use only the patient information
provided below to answer the question. Do NOT guess or provide information not
present in the data.

%s

Question: %s

Please provide a clear, concise, and factual answer based only on the data above.
Start your answer like this:
"According to your medical records, %s:"`

const recommendationPrompt = `You are a kind and knowledgeable post-operative healthcare assistant.
You will receive:
- PATIENT_RECORD_JSON: the patient's medical history and background
- SYMPTOMS_JSON: recent symptom reports, if any

Your job:
- Answer the patient's question clearly, empathetically, and safely.
- Use ONLY the information in the JSON blocks. If unsure, say so.
- Never speculate or provide advice that contradicts allergies or existing conditions.
- If SYMPTOMS_JSON is not empty, consider it as background, but do NOT treat the question as a symptom report.

PATIENT_RECORD_JSON:
%s

SYMPTOMS_JSON:
%s

Respond keeping these rules:
- Use clear, plain language
- Be brief and respectful
- Provide up to 3 bullet points if relevant (start with "- "), or a short paragraph
- Do NOT include markdown or code blocks
- Warn urgently if symptoms worsen or if emergency care is needed
- Invite the patient to ask more if they have doubts

Start your answer like this:
"%s, I'm happy to help with your question. Here's what I can tell you:"

The patient's current question is:
%q`
